package main

import (
	"context"
	"errors"
	"html/template"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/greek-portfolio/internal/config"
	"github.com/Zachkp/greek-portfolio/internal/contact"
	"github.com/Zachkp/greek-portfolio/internal/content"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/parallax"
	"github.com/Zachkp/greek-portfolio/internal/reveal"
	"github.com/Zachkp/greek-portfolio/internal/store"
)

const contactThanks = "Thank you for your message! I'll get back to you soon."

type server struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	content  *content.Store
	sender   contact.Sender
	glyphs   *glyph.Generator
	parallax *parallax.Handler
	admin    *adminSystem
}

func newServer(cfg *config.Config, logger *zap.Logger, st *store.Store, profile *content.Store, sender contact.Sender) *server {
	s := &server{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		content: profile,
		sender:  sender,
		glyphs:  glyph.NewGenerator(),
	}
	s.parallax = parallax.NewHandler(parallax.HandlerConfig{
		FrameInterval: cfg.FrameInterval,
		Generator:     s.glyphs,
		Cards:         func() []reveal.Card { return s.content.Get().Cards() },
		Logger:        logger.Named("parallax"),
	})
	s.admin = newAdminSystem(cfg, st, logger.Named("admin"))
	return s
}

// close waits for background visitor writes.
func (s *server) close() {
	s.admin.wait()
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery(), s.admin.visitorTrackingMiddleware())
	r.SetFuncMap(template.FuncMap{
		"numeral":  glyph.Numeral,
		"tagDelay": func(i, tag int) int64 { return content.TagDelay(i, tag).Milliseconds() },
		"fieldError": func(errs any, field string) string {
			e, _ := errs.(contact.Errors)
			return e[contact.Field(field)]
		},
	})
	r.LoadHTMLGlob(s.cfg.TemplateGlob)
	r.Static("/static", s.cfg.StaticDir)

	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"profile": s.content.Get(),
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// HTMX contact form fragment
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"values": contact.Values{},
		})
	})

	r.POST("/contact", s.handleContact)

	// Live per-field validation while the visitor types
	r.POST("/api/contact/validate", func(c *gin.Context) {
		var values contact.Values
		if err := c.ShouldBind(&values); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		errs := contact.Validate(values)
		resp := gin.H{"valid": len(errs) == 0, "errors": errs}
		if focus, ok := errs.First(); ok {
			resp["focus"] = focus
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/api/glyphs", s.handleGlyphs)

	r.GET("/api/cards", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cards": s.content.Get().Cards()})
	})

	r.GET("/ws/parallax", func(c *gin.Context) {
		s.parallax.Handle(c.Writer, c.Request)
	})

	s.admin.setupRoutes(r)
	return r
}

func (s *server) handleContact(c *gin.Context) {
	values := contact.Values{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}

	form := contact.NewForm(s.sender, contact.WithWindows(s.cfg.SuccessWindow, s.cfg.ErrorWindow))
	defer form.Close()
	form.Fill(values)

	msg, err := form.Submit(c.Request.Context())
	var verr *contact.ValidationError
	if errors.As(err, &verr) {
		// htmx only swaps 2xx/3xx responses, so field errors go out as 200.
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"errors": verr.Errors,
			"focus":  verr.Focus,
			"values": values,
		})
		return
	}

	record := store.ContactRecord{
		ID:        msg.ID.String(),
		HashedIP:  s.admin.hashIP(c.ClientIP()),
		Name:      msg.Name,
		Email:     msg.Email,
		Body:      msg.Body,
		Status:    store.StatusDelivered,
		CreatedAt: msg.SubmittedAt,
	}
	if err != nil {
		record.Status = store.StatusFailed
		record.Error = err.Error()
		s.logger.Warn("contact delivery failed", zap.String("message", record.ID), zap.Error(err))
	}
	if rerr := s.store.RecordContact(c.Request.Context(), record); rerr != nil {
		s.logger.Error("recording contact message", zap.String("message", record.ID), zap.Error(rerr))
	}

	snap := form.Snapshot()
	if err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error":        snap.General,
			"values":       values,
			"dismissAfter": s.cfg.ErrorWindow.Milliseconds(),
		})
		return
	}

	s.logger.Info("contact message delivered", zap.String("message", record.ID))
	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success":      contactThanks,
		"dismissAfter": s.cfg.SuccessWindow.Milliseconds(),
	})
}

type glyphQuery struct {
	DocumentHeight float64 `form:"documentHeight" binding:"gte=0"`
	ViewportHeight float64 `form:"viewportHeight" binding:"gte=0"`
	ViewportWidth  float64 `form:"viewportWidth" binding:"gte=0"`
	TouchPoints    int     `form:"touchPoints" binding:"gte=0"`
	Compact        *bool   `form:"compact"`
	ReducedMotion  bool    `form:"reducedMotion"`
}

func (s *server) handleGlyphs(c *gin.Context) {
	var q glyphQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for name, v := range map[string]float64{
		"documentHeight": q.DocumentHeight,
		"viewportHeight": q.ViewportHeight,
		"viewportWidth":  q.ViewportWidth,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a finite number"})
			return
		}
	}
	compact := glyph.IsCompact(q.ViewportWidth, q.TouchPoints)
	if q.Compact != nil {
		compact = *q.Compact
	}
	if q.ReducedMotion {
		c.JSON(http.StatusOK, glyph.Batch{Compact: compact, Glyphs: []glyph.Glyph{}})
		return
	}
	c.JSON(http.StatusOK, s.glyphs.Generate(q.DocumentHeight, q.ViewportHeight, compact))
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// runRetention purges old visitor and message rows at startup and then daily.
func (s *server) runRetention(ctx context.Context) error {
	s.admin.cleanupOldVisitorData(ctx)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.admin.cleanupOldVisitorData(ctx)
		}
	}
}
