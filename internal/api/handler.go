package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/reliefgrid/reliefgrid/internal/chain"
	"github.com/reliefgrid/reliefgrid/internal/coordinator"
	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/notify"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

type Handler struct {
	store         repository.Store
	coord         *coordinator.Coordinator
	broadcaster   *notify.Broadcaster
	chain         *chain.Client // nil when chain integration is disabled
	jwtSecret     string
	tokenDuration time.Duration
}

func NewHandler(store repository.Store, coord *coordinator.Coordinator, broadcaster *notify.Broadcaster, chainClient *chain.Client, jwtSecret string, tokenDuration time.Duration) *Handler {
	return &Handler{
		store:         store,
		coord:         coord,
		broadcaster:   broadcaster,
		chain:         chainClient,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.POST("/api/auth/register", h.register)
	r.POST("/api/auth/login", h.login)

	authed := r.Group("/api", AuthMiddleware(h.jwtSecret, h.store))

	authed.GET("/resources", h.listResources)
	authed.POST("/resources", h.createResource)
	authed.PUT("/resources/:id", h.updateResource)

	authed.GET("/requests", h.listRequests)
	authed.POST("/requests", h.createRequest)
	authed.PATCH("/requests/:id/status", h.updateRequestStatus)

	authed.GET("/donations", h.listDonations)
	authed.POST("/donations", h.createDonation)

	authed.GET("/volunteers", h.listVolunteers)
	authed.POST("/volunteers", h.createVolunteer)
	authed.PATCH("/volunteers/:id/status", h.updateVolunteerStatus)

	authed.GET("/emergencies", h.listEmergencies)
	authed.POST("/emergencies", h.createEmergency)

	authed.GET("/notifications", h.listNotifications)
	authed.POST("/notifications/:id/read", h.markNotificationRead)
	authed.GET("/notifications/stream", h.streamNotifications)

	authed.GET("/wallet/balances", h.walletBalances)
	authed.POST("/wallet/transfer", h.submitTransfer)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps coordinator error kinds onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, coordinator.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, coordinator.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, coordinator.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, coordinator.ErrInvariantViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func listFilter(c *gin.Context) repository.Filter {
	filter := repository.Filter{
		Limit: 50,
	}
	if l, ok := c.GetQuery("limit"); ok {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if s, ok := c.GetQuery("status"); ok && s != "" {
		filter.Status = &s
	}
	if s, ok := c.GetQuery("since"); ok {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	return filter
}

type createResourceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

func (h *Handler) createResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.coord.CreateResource(c.Request.Context(), actorFrom(c), coordinator.ResourceInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) updateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.coord.UpdateResource(c.Request.Context(), actorFrom(c), c.Param("id"), coordinator.ResourceInput{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) listResources(c *gin.Context) {
	resources, err := h.store.ListResources(c.Request.Context(), c.Query("owner_id"), listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

type createRequestRequest struct {
	ResourceType string         `json:"resource_type" binding:"required"`
	Quantity     int            `json:"quantity" binding:"required"`
	Urgency      models.Urgency `json:"urgency" binding:"required"`
	Description  string         `json:"description"`
}

func (h *Handler) createRequest(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.coord.CreateResourceRequest(c.Request.Context(), actorFrom(c), coordinator.CreateRequestInput{
		ResourceType: req.ResourceType,
		Quantity:     req.Quantity,
		Urgency:      req.Urgency,
		Description:  req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateRequestStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.coord.UpdateResourceRequestStatus(c.Request.Context(), actorFrom(c), c.Param("id"), models.RequestStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) listRequests(c *gin.Context) {
	requests, err := h.store.ListRequests(c.Request.Context(), listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type createDonationRequest struct {
	RecipientID      string           `json:"recipient_id" binding:"required"`
	ResourceType     string           `json:"resource_type"`
	ResourceQuantity int              `json:"resource_quantity"`
	Amount           *decimal.Decimal `json:"amount"`
	Currency         string           `json:"currency"`
}

func (h *Handler) createDonation(c *gin.Context) {
	var req createDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, clientSecret, err := h.coord.CreateDonation(c.Request.Context(), actorFrom(c), coordinator.CreateDonationInput{
		RecipientID:      req.RecipientID,
		ResourceType:     req.ResourceType,
		ResourceQuantity: req.ResourceQuantity,
		Amount:           req.Amount,
		Currency:         req.Currency,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"donation": d}
	if clientSecret != "" {
		resp["client_secret"] = clientSecret
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listDonations(c *gin.Context) {
	donations, err := h.store.ListDonations(c.Request.Context(), listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

type createVolunteerRequest struct {
	FireStationID    string   `json:"fire_station_id"`
	Skills           []string `json:"skills"`
	Availability     []string `json:"availability"`
	EmergencyContact string   `json:"emergency_contact"`
}

func (h *Handler) createVolunteer(c *gin.Context) {
	var req createVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.coord.CreateVolunteer(c.Request.Context(), actorFrom(c), coordinator.CreateVolunteerInput{
		FireStationID:    req.FireStationID,
		Skills:           req.Skills,
		Availability:     req.Availability,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) updateVolunteerStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.coord.UpdateVolunteerStatus(c.Request.Context(), actorFrom(c), c.Param("id"), models.VolunteerStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) listVolunteers(c *gin.Context) {
	volunteers, err := h.store.ListVolunteers(c.Request.Context(), c.Query("fire_station_id"), listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch volunteers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteers": volunteers})
}

type createEmergencyRequest struct {
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description"`
	Severity        models.Severity `json:"severity" binding:"required"`
	Location        string          `json:"location"`
	ResourcesNeeded []string        `json:"resources_needed"`
}

func (h *Handler) createEmergency(c *gin.Context) {
	var req createEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.coord.CreateEmergency(c.Request.Context(), actorFrom(c), coordinator.CreateEmergencyInput{
		Title:           req.Title,
		Description:     req.Description,
		Severity:        req.Severity,
		Location:        req.Location,
		ResourcesNeeded: req.ResourcesNeeded,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) listEmergencies(c *gin.Context) {
	emergencies, err := h.store.ListEmergencies(c.Request.Context(), listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch emergencies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emergencies": emergencies})
}

func (h *Handler) listNotifications(c *gin.Context) {
	actor := actorFrom(c)
	notifications, err := h.store.ListNotifications(c.Request.Context(), actor.ID, listFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	n, err := h.coord.MarkNotificationRead(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// walletBalances serves the cached on-chain token balances for the actor.
// These are display data; the business wallet balance is on the user record.
func (h *Handler) walletBalances(c *gin.Context) {
	actor := actorFrom(c)
	balances, err := h.store.ListChainBalances(c.Request.Context(), actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch balances"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_balance": actor.WalletBalance,
		"token_balances": balances,
	})
}

func (h *Handler) submitTransfer(c *gin.Context) {
	if h.chain == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chain integration is disabled"})
		return
	}

	var t chain.SignedTransfer
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txHash, err := h.chain.SubmitTransfer(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "transfer submission failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"tx_hash": txHash})
}
