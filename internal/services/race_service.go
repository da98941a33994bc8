package services

import (
	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// RaceService handles race reads and the distance reconciliation flow.
type RaceService struct {
	raceRepo *database.RaceRepository
	logger   *logrus.Logger
}

// NewRaceService creates a new RaceService
func NewRaceService(raceRepo *database.RaceRepository, logger *logrus.Logger) *RaceService {
	return &RaceService{raceRepo: raceRepo, logger: logger}
}

// Create creates a race with its initial distances.
func (s *RaceService) Create(req *models.CreateRaceRequest) (*models.Race, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	race, err := s.raceRepo.Create(req)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"race_id":   race.ID,
		"distances": len(race.Distances),
	}).Info("Race created")
	return race, nil
}

// Update applies a partial race update. A distance set in the request is
// reconciled against the stored rows by diff inside one transaction.
func (s *RaceService) Update(raceID string, req *models.UpdateRaceRequest) (*models.Race, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.raceRepo.Update(raceID, req)
}

// FindOne retrieves a race with its active distances.
func (s *RaceService) FindOne(raceID string) (*models.Race, error) {
	return s.raceRepo.GetByID(raceID)
}

// FindAll lists all live races.
func (s *RaceService) FindAll() ([]models.Race, error) {
	return s.raceRepo.List()
}
