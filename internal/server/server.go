package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karthikdoguparthi/KisaanGrow/internal/advisory"
	"github.com/karthikdoguparthi/KisaanGrow/internal/auth"
	"github.com/karthikdoguparthi/KisaanGrow/internal/config"
	"github.com/karthikdoguparthi/KisaanGrow/internal/i18n"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/service"
	"github.com/karthikdoguparthi/KisaanGrow/internal/session"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
	"github.com/karthikdoguparthi/KisaanGrow/lib/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router   *gin.Engine
	config   config.Config
	sessions session.Store
	identity *service.IdentityService
	booking  *service.BookingService
	payment  *service.PaymentService
	advisor  *advisory.Advisor
	live     http.Handler
	log      *slog.Logger
	now      func() time.Time
}

type ServerOpts struct {
	Config   config.Config
	Sessions session.Store
	Identity *service.IdentityService
	Booking  *service.BookingService
	Payment  *service.PaymentService
	Advisor  *advisory.Advisor
	// Live serves the websocket booking feed; the route is absent when nil.
	Live   http.Handler
	Logger *slog.Logger
}

func NewServer(opts ServerOpts) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	advisor := opts.Advisor
	if advisor == nil {
		advisor = advisory.NewAdvisor(nil, 0, log)
	}

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(log))

	return &Server{
		router:   router,
		config:   opts.Config,
		sessions: opts.Sessions,
		identity: opts.Identity,
		booking:  opts.Booking,
		payment:  opts.Payment,
		advisor:  advisor,
		live:     opts.Live,
		log:      log,
		now:      time.Now,
	}
}

// Run serves the API on addr and metrics on the configured metrics address
// until ctx is cancelled, then shuts both down.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.SetupRoutes()

	api := &http.Server{Addr: addr, Handler: s.router}
	metricsServer := &http.Server{Addr: s.config.MetricsListen, Handler: promhttp.Handler()}

	go func() {
		s.log.Info("Listening and serving Prometheus", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server", slog.Any("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening and serving HTTP", slog.String("addr", addr))
		errCh <- api.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = metricsServer.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	if err := api.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) SetupRoutes() {
	s.router.Use(PrometheusMiddleware())

	v1 := s.router.Group("/api/v1")

	// Public routes
	v1.GET("/bands", s.bands)
	v1.POST("/farmers", s.registerFarmer)
	v1.POST("/corporates", s.registerCorporate)
	v1.POST("/login", s.login)

	// Authenticated routes
	authGroup := v1.Group("/")
	authGroup.Use(middleware.AuthMiddleware(s.config.Secret, s.sessions))
	{
		authGroup.POST("/logout", s.logout)
		authGroup.PUT("/session/language", s.setLanguage)
	}

	farmer := authGroup.Group("/")
	farmer.Use(middleware.RequireRole(models.RoleFarmer))
	{
		farmer.POST("/slots", s.bookSlot)
		farmer.GET("/slots", s.listSlots)
		farmer.GET("/slots/:id", s.getSlot)
		farmer.GET("/advice", s.advice)
	}

	corp := authGroup.Group("/")
	corp.Use(middleware.RequireRole(models.RoleCorporate))
	{
		corp.GET("/bookings", s.listBookings)
		corp.PATCH("/bookings/:id/payment", s.updatePayment)
		if s.live != nil {
			corp.GET("/bookings/live", gin.WrapH(s.live))
		}
	}
}

func message(c *gin.Context, key string) string {
	return i18n.T(middleware.Lang(c), key)
}

// writeError maps service and store errors to a status and a localized message.
func (s *Server) writeError(c *gin.Context, err error) {
	status, key := http.StatusInternalServerError, "write_failed"
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, key = http.StatusUnauthorized, "login_error"
	case errors.Is(err, service.ErrWeakPassword):
		status, key = http.StatusBadRequest, "weak_password"
	case errors.Is(err, service.ErrPasswordMismatch):
		status, key = http.StatusBadRequest, "password_mismatch"
	case errors.Is(err, models.ErrSchemaViolation):
		status, key = http.StatusBadRequest, "missing_fields"
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidTimeBand),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidLanguage):
		status, key = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrForbidden):
		status, key = http.StatusForbidden, "access_denied"
	case errors.Is(err, service.ErrSlotNotFound):
		status, key = http.StatusNotFound, "slot_not_found"
	case errors.Is(err, session.ErrNotFound):
		status, key = http.StatusUnauthorized, "session_expired"
	case errors.Is(err, storage.ErrReadFailed):
		status, key = http.StatusServiceUnavailable, "data_unavailable"
	case errors.Is(err, storage.ErrWriteFailed):
		status, key = http.StatusInternalServerError, "write_failed"
	default:
		s.log.Error("unhandled error", slog.String("path", c.FullPath()), slog.Any("error", err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message(c, key)})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message(c, "missing_fields"), "details": err.Error()})
}

// bands lists the bookable time bands
func (s *Server) bands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bands": s.booking.TimeBands()})
}

// registerFarmer handles farmer registration
func (s *Server) registerFarmer(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Mobile          string `json:"mobile" binding:"required"`
		Aadhar          string `json:"aadhar" binding:"required"`
		Village         string `json:"village"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	farmer := models.FarmerFromRow(models.Row{
		models.ColName:    req.Name,
		models.ColMobile:  req.Mobile,
		models.ColAadhar:  req.Aadhar,
		models.ColVillage: req.Village,
	})
	if err := s.identity.RegisterFarmer(c.Request.Context(), farmer, req.Password, req.ConfirmPassword); err != nil {
		s.writeError(c, err)
		return
	}

	// village is null when it was not given
	c.JSON(http.StatusCreated, gin.H{
		"message": message(c, "reg_success_farmer"),
		"farmer":  farmer,
	})
}

// registerCorporate handles corporate user registration
func (s *Server) registerCorporate(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		CorpID          string `json:"corpId" binding:"required"`
		Role            string `json:"role"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	corp := models.Corporate{Name: req.Name, CorpID: req.CorpID, Role: req.Role}
	if err := s.identity.RegisterCorporate(c.Request.Context(), corp, req.Password, req.ConfirmPassword); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message(c, "reg_success_corp"),
		"corpId":  corp.CorpID,
	})
}

// login opens a session and returns a bearer token for it
func (s *Server) login(c *gin.Context) {
	var req struct {
		Role     string `json:"role" binding:"required,oneof=farmer corp"`
		Key      string `json:"key" binding:"required"`
		Password string `json:"password" binding:"required"`
		Lang     string `json:"lang"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	lang := i18n.Resolve(c.GetHeader("Accept-Language"), req.Lang, c.Query("lang"))
	sess, err := s.identity.Login(c.Request.Context(), models.Role(req.Role), req.Key, req.Password, lang)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := auth.GenerateTokenWithExpiry(sess.ID, sess.Role, s.config.Secret, s.tokenTTL())
	if err != nil {
		_ = s.identity.Logout(c.Request.Context(), sess.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"role":    sess.Role,
		"name":    sess.Name,
		"lang":    sess.Lang,
		"message": i18n.T(sess.Lang, "login_success"),
	})
}

func (s *Server) tokenTTL() time.Duration {
	if s.config.TokenTTL > 0 {
		return s.config.TokenTTL
	}
	return auth.DefaultTokenTTL
}

// logout discards the caller's session
func (s *Server) logout(c *gin.Context) {
	sess := middleware.Session(c)
	if err := s.identity.Logout(c.Request.Context(), sess.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message(c, "logged_out")})
}

// setLanguage switches the interface and advice languages independently
func (s *Server) setLanguage(c *gin.Context) {
	var req struct {
		Lang       string `json:"lang"`
		AdviceLang string `json:"adviceLang"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	sess := middleware.Session(c)
	if err := s.identity.SetLanguage(c.Request.Context(), sess, req.Lang, req.AdviceLang); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lang":       sess.Lang,
		"adviceLang": sess.AdviceLang,
		"message":    i18n.T(sess.Lang, "language_updated"),
	})
}

// bookSlot books a slot for the calling farmer and attaches advice
func (s *Server) bookSlot(c *gin.Context) {
	var req struct {
		Date     string   `json:"date" binding:"required"`
		Time     string   `json:"time" binding:"required"`
		Quantity *float64 `json:"quantity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	sess := middleware.Session(c)
	slot, err := s.booking.BookSlot(c.Request.Context(), sess, req.Date, req.Time, *req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	days, _ := advisory.DaysUntil(slot.Date, s.now())
	advice := s.advisor.Advise(c.Request.Context(), slot.Quantity, days, sess.AdviceLang)

	c.JSON(http.StatusCreated, gin.H{
		"slot":    slot,
		"advice":  advice,
		"message": message(c, "slot_booked"),
	})
}

// listSlots lists the calling farmer's bookings
func (s *Server) listSlots(c *gin.Context) {
	sess := middleware.Session(c)
	slots, err := s.booking.ListForFarmer(c.Request.Context(), sess.Key, c.Query("date"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{"slots": slots}
	if len(slots) == 0 {
		resp["message"] = message(c, "no_slots")
	}
	c.JSON(http.StatusOK, resp)
}

// getSlot shows one of the calling farmer's bookings with its payment status
func (s *Server) getSlot(c *gin.Context) {
	sess := middleware.Session(c)
	slot, err := s.booking.GetForFarmer(c.Request.Context(), sess.Key, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// advice returns guidance for a planned booking without booking it
func (s *Server) advice(c *gin.Context) {
	var req struct {
		Quantity float64 `form:"quantity"`
		Date     string  `form:"date" binding:"required"`
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if err := service.ValidateQuantity(req.Quantity); err != nil {
		s.writeError(c, err)
		return
	}

	days, err := advisory.DaysUntil(req.Date, s.now())
	if err != nil {
		s.writeError(c, service.ErrInvalidDate)
		return
	}

	sess := middleware.Session(c)
	c.JSON(http.StatusOK, s.advisor.Advise(c.Request.Context(), req.Quantity, days, sess.AdviceLang))
}

// listBookings returns all bookings with KPIs for corporate staff
func (s *Server) listBookings(c *gin.Context) {
	var filter models.SlotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		s.badRequest(c, err)
		return
	}

	overview, err := s.payment.ListAll(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// updatePayment sets the payment status of a booking
func (s *Server) updatePayment(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	slot, err := s.payment.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), models.PaymentStatus(req.Status))
	if errors.Is(err, service.ErrSlotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": message(c, "payment_failed")})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slot":    slot,
		"message": message(c, "payment_updated"),
	})
}
