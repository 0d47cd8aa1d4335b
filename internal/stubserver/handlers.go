package stubserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudha-nunna/healthcare-project/internal/model"
)

var defaultSlots = []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00"}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[req.Email]; exists {
		respondError(c, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	rec := &userRecord{
		user:         model.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email},
		passwordHash: hash,
	}
	s.usersByEmail[req.Email] = rec
	s.usersByID[rec.user.ID] = rec

	token, err := s.issueToken(rec.user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": rec.user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.usersByEmail[req.Email]
	if !ok || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.issueToken(rec.user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": rec.user})
}

func (s *Server) handleListSpecialists(c *gin.Context) {
	specialty := c.Query("specialty")

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]model.Specialist, 0, len(s.specialists))
	for _, sp := range s.specialists {
		if specialty == "" || strings.Contains(strings.ToLower(sp.Specialty), strings.ToLower(specialty)) {
			matched = append(matched, sp)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "specialists": matched})
}

func (s *Server) handleSlots(c *gin.Context) {
	doctorID := c.Query("doctorId")
	date := c.Query("date")
	if doctorID == "" || date == "" {
		respondError(c, http.StatusBadRequest, "doctorId and date are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken := map[string]bool{}
	for _, apt := range s.appointments {
		if apt.Doctor.ID == doctorID && apt.Date == date && apt.Status == model.AppointmentStatusBooked {
			taken[apt.Time] = true
		}
	}

	open := make([]string, 0, len(defaultSlots))
	for _, slot := range defaultSlots {
		if !taken[slot] {
			open = append(open, slot)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slots": open})
}

func (s *Server) handleBook(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DoctorID == "" || req.Date == "" || req.Time == "" {
		respondError(c, http.StatusBadRequest, "userId, doctorId, date and time are required")
		return
	}

	userID := c.GetString("userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	var doctor *model.Specialist
	for i := range s.specialists {
		if s.specialists[i].ID == req.DoctorID {
			doctor = &s.specialists[i]
			break
		}
	}
	if doctor == nil {
		respondError(c, http.StatusNotFound, "doctor not found")
		return
	}

	for _, apt := range s.appointments {
		if apt.Doctor.ID == req.DoctorID && apt.Date == req.Date && apt.Time == req.Time &&
			apt.Status == model.AppointmentStatusBooked {
			respondError(c, http.StatusConflict, "slot already booked")
			return
		}
	}

	apt := &model.Appointment{
		ID:     uuid.NewString(),
		UserID: userID,
		Doctor: model.DoctorRef{
			ID:        doctor.ID,
			Name:      doctor.Name,
			Specialty: doctor.Specialty,
			Hospital:  doctor.Hospital,
		},
		Date:   req.Date,
		Time:   req.Time,
		Status: model.AppointmentStatusBooked,
	}
	s.appointments[apt.ID] = apt

	c.JSON(http.StatusCreated, gin.H{"success": true, "appointment": apt})
}

func (s *Server) handleCancel(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	apt, ok := s.appointments[id]
	if !ok || apt.UserID != c.GetString("userID") {
		respondError(c, http.StatusNotFound, "appointment not found")
		return
	}

	apt.Status = model.AppointmentStatusCancelled
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": apt})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	userID := c.GetString("userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.usersByID[userID]
	if !ok {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	appointments := []model.Appointment{}
	for _, apt := range s.appointments {
		if apt.UserID == userID {
			appointments = append(appointments, *apt)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": rec.user, "appointments": appointments})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var updates model.ProfileUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, http.StatusBadRequest, "invalid profile payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.usersByID[c.GetString("userID")]
	if !ok {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	user := &rec.user
	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.Phone != nil {
		user.Phone = *updates.Phone
	}
	if updates.Address != nil {
		user.Address = *updates.Address
	}
	if updates.DateOfBirth != nil {
		user.DateOfBirth = *updates.DateOfBirth
	}
	if updates.Gender != nil {
		user.Gender = *updates.Gender
	}
	if updates.BloodType != nil {
		user.BloodType = *updates.BloodType
	}
	if updates.Allergies != nil {
		user.Allergies = updates.Allergies
	}
	if updates.Medications != nil {
		user.Medications = updates.Medications
	}
	if updates.MedicalConditions != nil {
		user.MedicalConditions = updates.MedicalConditions
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": *user})
}

func (s *Server) handleGetInsurance(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ins := s.insurance[c.GetString("userID")]
	c.JSON(http.StatusOK, gin.H{"success": true, "insurance": ins})
}

func (s *Server) handleUpdateInsurance(c *gin.Context) {
	var update model.InsuranceUpdate
	if err := c.ShouldBindJSON(&update); err != nil || update.Provider == "" || update.PolicyNumber == "" {
		respondError(c, http.StatusBadRequest, "provider and policyNumber are required")
		return
	}

	userID := c.GetString("userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	ins := &model.Insurance{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     update.Provider,
		PolicyNumber: update.PolicyNumber,
		Coverage:     update.Coverage,
		ValidFrom:    update.ValidFrom,
		ValidTo:      update.ValidTo,
	}
	s.insurance[userID] = ins

	c.JSON(http.StatusOK, gin.H{"success": true, "insurance": ins})
}

func (s *Server) handleVerifyInsurance(c *gin.Context) {
	var req struct {
		ServiceID string  `json:"serviceId" binding:"required"`
		Cost      float64 `json:"cost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "serviceId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	check := model.CoverageCheck{OutOfPocket: req.Cost}
	if ins := s.insurance[c.GetString("userID")]; ins != nil {
		if amount, ok := ins.Coverage[req.ServiceID]; ok {
			covered := amount
			if covered > req.Cost {
				covered = req.Cost
			}
			check = model.CoverageCheck{Covered: true, Coverage: covered, OutOfPocket: req.Cost - covered}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": check})
}

func (s *Server) handleListReviews(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := s.reviews[c.Param("id")]
	if reviews == nil {
		reviews = []model.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews})
}

func (s *Server) handleCreateReview(c *gin.Context) {
	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DoctorID == "" || req.Rating < 1 || req.Rating > 5 {
		respondError(c, http.StatusBadRequest, "doctorId and a rating between 1 and 5 are required")
		return
	}

	userID := c.GetString("userID")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.usersByID[userID]
	review := model.Review{
		ID:       uuid.NewString(),
		DoctorID: req.DoctorID,
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if rec != nil {
		review.UserName = rec.user.Name
	}
	s.reviews[req.DoctorID] = append(s.reviews[req.DoctorID], review)

	// Recompute the doctor's aggregate so listings reflect the review.
	for i := range s.specialists {
		if s.specialists[i].ID == req.DoctorID {
			total := s.specialists[i].Rating*float64(s.specialists[i].ReviewCount) + req.Rating
			s.specialists[i].ReviewCount++
			s.specialists[i].Rating = total / float64(s.specialists[i].ReviewCount)
			break
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "review": review})
}

func (s *Server) handlePrices(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "prices": s.prices})
}

func (s *Server) handleEstimate(c *gin.Context) {
	serviceID := c.Param("serviceId")
	hospital := c.Query("hospital")

	s.mu.Lock()
	defer s.mu.Unlock()

	byHospital, ok := s.prices[serviceID]
	if !ok {
		respondError(c, http.StatusNotFound, "unknown service")
		return
	}
	base, ok := byHospital[hospital]
	if !ok {
		respondError(c, http.StatusNotFound, "service not offered at hospital")
		return
	}

	estimate := model.PriceEstimate{BasePrice: base, OutOfPocket: base}
	c.JSON(http.StatusOK, gin.H{"success": true, "estimate": estimate})
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file field is required")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     fmt.Sprintf("/uploads/%s-%s", uuid.NewString(), file.Filename),
	})
}
