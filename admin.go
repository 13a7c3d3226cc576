// admin.go - privacy-conscious admin area and visitor tracking
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/greek-portfolio/internal/config"
	"github.com/Zachkp/greek-portfolio/internal/store"
)

type adminSystem struct {
	cfg    *config.Config
	store  *store.Store
	logger *zap.Logger

	token string
	salt  string

	tracking sync.WaitGroup
}

func newAdminSystem(cfg *config.Config, st *store.Store, logger *zap.Logger) *adminSystem {
	a := &adminSystem{
		cfg:    cfg,
		store:  st,
		logger: logger,
		token:  generateAdminToken(),
		salt:   generateAdminToken(), // Use for IP hashing
	}

	logger.Info("admin access available", zap.String("path", "/admin/login"))
	if gin.Mode() == gin.DebugMode {
		logger.Debug("admin token (dev only)", zap.String("token", a.token))
		if cfg.AdminDefaults {
			logger.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
		}
	}
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address for privacy (consistent per IP for one process lifetime)
func (a *adminSystem) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminSystem) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("admin_token")
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func untracked(path string) bool {
	for _, prefix := range []string{"/static/", "/admin/", "/favicon", "/privacy", "/ws/", "/api/", "/healthz"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Records page views with hashed IPs; honours Do Not Track.
func (a *adminSystem) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || untracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  a.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
		}
		a.tracking.Add(1)
		go func() {
			defer a.tracking.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.RecordVisit(ctx, visit); err != nil {
				a.logger.Warn("recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

func (a *adminSystem) wait() {
	a.tracking.Wait()
}

// cleanupOldVisitorData ages out visits and contact messages past their
// retention windows. A zero window keeps rows forever.
func (a *adminSystem) cleanupOldVisitorData(ctx context.Context) {
	now := time.Now()
	purges := []struct {
		what      string
		retention time.Duration
		purge     func(context.Context, time.Time) (int64, error)
	}{
		{"visitor", a.cfg.VisitorRetention, a.store.CleanupVisitors},
		{"message", a.cfg.MessageRetention, a.store.CleanupMessages},
	}
	for _, p := range purges {
		if p.retention <= 0 {
			continue
		}
		n, err := p.purge(ctx, now.Add(-p.retention))
		if err != nil {
			a.logger.Error("privacy cleanup failed", zap.String("records", p.what), zap.Error(err))
			continue
		}
		if n > 0 {
			a.logger.Info("privacy cleanup removed records",
				zap.String("records", p.what),
				zap.Int64("rows", n),
				zap.Duration("retention", p.retention))
		}
	}
}

func (a *adminSystem) setupRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     "Privacy Policy",
			"retention":        a.cfg.VisitorRetention.String(),
			"messageRetention": a.cfg.MessageRetention.String(),
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			a.logger.Warn("failed admin login", zap.String("client", a.hashIP(c.ClientIP())))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		c.SetCookie("admin_token", a.token, 3600*24, "/admin", "", false, true)
		a.logger.Info("admin login", zap.String("client", a.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie("admin_token", "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.authMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			a.logger.Error("loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.store.Visitors(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.GET("/messages", func(c *gin.Context) {
		messages, err := a.store.Messages(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load messages",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
		})
	})

	adminGroup.DELETE("/messages/:id", func(c *gin.Context) {
		id := c.Param("id")
		err := a.store.DeleteMessage(c.Request.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		case err != nil:
			a.logger.Error("deleting message", zap.String("message", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		a.logger.Info("message deleted", zap.String("message", id), zap.String("client", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
	})

	adminGroup.POST("/privacy/delete-visitor-data", func(c *gin.Context) {
		a.cleanupOldVisitorData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.logger.Info("admin stats exported", zap.String("client", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}
