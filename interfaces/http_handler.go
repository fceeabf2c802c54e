package interfaces

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workmarket/domain"
	"workmarket/services"
)

const userKey = "currentUser"

type HTTPHandler struct {
	Users         *services.UserService
	Jobs          *services.JobService
	Offers        *services.OfferService
	Chats         *services.ChatService
	Portfolio     *services.PortfolioService
	Notifications *services.NotificationService
}

func NewHTTPHandler(router *gin.Engine, h *HTTPHandler) {
	router.POST("/users", h.Register)
	router.GET("/contractors/:id/portfolio", h.ContractorPortfolio)

	auth := router.Group("/", h.Authenticate)
	auth.GET("/users/me", h.Me)

	auth.POST("/jobs", h.CreateJob)
	auth.GET("/jobs", h.ListJobs)
	auth.GET("/jobs/:id", h.GetJob)
	auth.GET("/my/jobs", h.MyJobs)

	auth.POST("/jobs/:id/offers", h.SubmitOffer)
	auth.GET("/jobs/:id/offers", h.ListJobOffers)
	auth.POST("/jobs/:id/offers/:offerID/accept", h.AcceptOffer)
	auth.GET("/my/offers", h.MyOffers)

	auth.POST("/chats", h.OpenChat)
	auth.GET("/chats", h.ListChats)
	auth.GET("/chats/:id/messages", h.ListMessages)
	auth.POST("/chats/:id/messages", h.SendMessage)

	auth.POST("/portfolio", h.AddPortfolio)
	auth.PUT("/portfolio/:id", h.UpdatePortfolio)
	auth.DELETE("/portfolio/:id", h.DeletePortfolio)

	auth.GET("/notifications", h.ListNotifications)
	auth.POST("/notifications/:id/read", h.MarkNotificationRead)
}

// Authenticate resolves the bearer token and stores the user on the
// context. Anything short of a valid token fails closed with 401.
func (h *HTTPHandler) Authenticate(c *gin.Context) {
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	user, err := h.Users.ByToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrNotAuthenticated.Error()})
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// fail maps a service error onto an HTTP status.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrWrongRole),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrJobNotOpen),
		errors.Is(err, domain.ErrOfferNotPending),
		errors.Is(err, domain.ErrDuplicateOffer),
		errors.Is(err, domain.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *HTTPHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *HTTPHandler) CreateJob(c *gin.Context) {
	var in services.CreateJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.Jobs.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *HTTPHandler) ListJobs(c *gin.Context) {
	jobs, err := h.Jobs.List(c.Request.Context(), domain.JobStatus(c.Query("status")), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *HTTPHandler) GetJob(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *HTTPHandler) MyJobs(c *gin.Context) {
	dash, err := h.Jobs.Mine(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *HTTPHandler) SubmitOffer(c *gin.Context) {
	var in services.SubmitOfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer, err := h.Offers.Submit(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *HTTPHandler) ListJobOffers(c *gin.Context) {
	view, err := h.Offers.ListForJob(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) AcceptOffer(c *gin.Context) {
	offer, err := h.Offers.Accept(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("offerID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *HTTPHandler) MyOffers(c *gin.Context) {
	view, err := h.Offers.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) OpenChat(c *gin.Context) {
	var in struct {
		JobID  string `json:"job_id"`
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chat, err := h.Chats.Open(c.Request.Context(), currentUser(c), in.JobID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *HTTPHandler) ListChats(c *gin.Context) {
	chats, err := h.Chats.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *HTTPHandler) ListMessages(c *gin.Context) {
	msgs, err := h.Chats.Messages(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *HTTPHandler) SendMessage(c *gin.Context) {
	var in struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.Chats.Send(c.Request.Context(), currentUser(c), c.Param("id"), in.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *HTTPHandler) AddPortfolio(c *gin.Context) {
	var in services.CompletedJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.Portfolio.Add(c.Request.Context(), currentUser(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *HTTPHandler) UpdatePortfolio(c *gin.Context) {
	var in services.CompletedJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.Portfolio.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *HTTPHandler) DeletePortfolio(c *gin.Context) {
	if err := h.Portfolio.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ContractorPortfolio(c *gin.Context) {
	entries, err := h.Portfolio.ListByContractor(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *HTTPHandler) ListNotifications(c *gin.Context) {
	rows, err := h.Notifications.List(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *HTTPHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
