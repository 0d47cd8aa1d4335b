// Package stubserver is an in-memory double of the HealthCompare
// backend. It exists so the client has something real to talk to in
// integration tests and demos; it is not a production server.
package stubserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sudha-nunna/healthcare-project/internal/model"
)

type userRecord struct {
	user         model.User
	passwordHash []byte
}

// Server holds the in-memory state behind the stub API.
type Server struct {
	engine    *gin.Engine
	jwtSecret []byte
	started   time.Time

	mu           sync.Mutex
	usersByEmail map[string]*userRecord
	usersByID    map[string]*userRecord
	specialists  []model.Specialist
	appointments map[string]*model.Appointment
	insurance    map[string]*model.Insurance
	reviews      map[string][]model.Review
	prices       model.PriceTable
}

// New builds a seeded stub server.
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		engine:       gin.New(),
		jwtSecret:    []byte("stub-secret"),
		started:      time.Now(),
		usersByEmail: map[string]*userRecord{},
		usersByID:    map[string]*userRecord{},
		appointments: map[string]*model.Appointment{},
		insurance:    map[string]*model.Insurance{},
		reviews:      map[string][]model.Review{},
	}
	s.seed()

	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.Default())
	s.registerRoutes()

	return s
}

// Handler exposes the stub as an http.Handler for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the stub on addr; used by cmd/healthstub.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/auth/signup", s.handleSignup)
		api.POST("/auth/login", s.handleLogin)
		api.GET("/specialists", s.handleListSpecialists)
		api.GET("/slots", s.handleSlots)
		api.GET("/reviews/doctor/:id", s.handleListReviews)
		api.GET("/prices", s.handlePrices)
		api.GET("/prices/estimate/:serviceId", s.handleEstimate)
		api.POST("/upload", s.handleUpload)

		authed := api.Group("")
		authed.Use(s.requireAuth())
		{
			authed.POST("/appointments", s.handleBook)
			authed.DELETE("/appointments/:id", s.handleCancel)
			authed.GET("/profile", s.handleGetProfile)
			authed.PUT("/profile", s.handleUpdateProfile)
			authed.GET("/insurance", s.handleGetInsurance)
			authed.POST("/insurance", s.handleUpdateInsurance)
			authed.POST("/insurance/verify", s.handleVerifyInsurance)
			authed.POST("/reviews", s.handleCreateReview)
		}
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			respondError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			respondError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("userID", sub)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

func (s *Server) seed() {
	s.specialists = []model.Specialist{
		{
			ID: "doc-1", Name: "Dr. Asha Rao", Specialty: "Cardiologist",
			Rating: 4.8, ReviewCount: 120, ConsultationFee: 150,
			Hospital: "City Heart Center", ExperienceYears: 15,
			Services: model.ServiceFlags{
				VideoConsultation: true, InsuranceAccepted: true,
				WeekendAvailability: true,
			},
			Recommended: true,
		},
		{
			ID: "doc-2", Name: "Dr. Mark Ellis", Specialty: "Cardiologist",
			Rating: 4.5, ReviewCount: 86, ConsultationFee: 120,
			Hospital: "Riverside General", ExperienceYears: 10,
			Services: model.ServiceFlags{
				HomeVisit: true, InsuranceAccepted: true, SameDayAppointment: true,
			},
		},
		{
			ID: "doc-3", Name: "Dr. Lena Okafor", Specialty: "Dermatologist",
			Rating: 4.9, ReviewCount: 204, ConsultationFee: 90,
			Hospital: "Riverside General", ExperienceYears: 8,
			Services: model.ServiceFlags{
				VideoConsultation: true, SameDayAppointment: true,
			},
		},
	}

	s.prices = model.PriceTable{
		"blood-panel": {"City Heart Center": 80, "Riverside General": 65},
		"mri-scan":    {"City Heart Center": 950, "Riverside General": 820},
		"x-ray":       {"City Heart Center": 140, "Riverside General": 110},
	}
}
