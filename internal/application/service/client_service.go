package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/matching"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/pkg/utils"
)

// ClientService manages registered clients
type ClientService interface {
	Create(ctx context.Context, client *entity.Client) (*entity.Client, error)
	Get(ctx context.Context, id int64) (*entity.Client, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
}

type clientServiceImpl struct {
	clientRepo port.ClientRepository
	logger     Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo port.ClientRepository, logger Logger) ClientService {
	return &clientServiceImpl{clientRepo: clientRepo, logger: logger}
}

func (s *clientServiceImpl) Create(ctx context.Context, client *entity.Client) (*entity.Client, error) {
	client.FullName = strings.TrimSpace(client.FullName)
	if client.FullName == "" {
		return nil, &money.ValidationError{Field: "full name", Reason: "required"}
	}
	client.Email = strings.TrimSpace(client.Email)
	if client.Email != "" {
		if err := utils.ValidateEmail(client.Email); err != nil {
			return nil, &money.ValidationError{Field: "email", Value: client.Email, Reason: "invalid format"}
		}
	}
	client.CreatedAt = time.Now().UTC()

	if err := s.clientRepo.Create(ctx, client); err != nil {
		s.logger.Error("Failed to create client", "error", err)
		return nil, err
	}
	s.logger.Info("Client created", "client_id", client.ID)
	return client, nil
}

func (s *clientServiceImpl) Get(ctx context.Context, id int64) (*entity.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	limit, offset = clampPage(limit, offset)
	return s.clientRepo.List(ctx, limit, offset)
}

// MatchService finds the loan applications that belong to a client
type MatchService interface {
	ApplicationsForClient(ctx context.Context, clientID int64) ([]entity.LoanApplication, error)
	RankForClient(ctx context.Context, clientID int64) ([]matching.MatchResult, error)
}

type matchServiceImpl struct {
	clientRepo port.ClientRepository
	appRepo    port.ApplicationRepository
	logger     Logger
}

// NewMatchService creates a new MatchService
func NewMatchService(clientRepo port.ClientRepository, appRepo port.ApplicationRepository, logger Logger) MatchService {
	return &matchServiceImpl{clientRepo: clientRepo, appRepo: appRepo, logger: logger}
}

func (s *matchServiceImpl) ApplicationsForClient(ctx context.Context, clientID int64) ([]entity.LoanApplication, error) {
	client, apps, err := s.candidates(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return matching.MatchClientToApplications(*client, apps), nil
}

func (s *matchServiceImpl) RankForClient(ctx context.Context, clientID int64) ([]matching.MatchResult, error) {
	client, apps, err := s.candidates(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ranked := matching.Rank(*client, apps)
	s.logger.Info("Client matched", "client_id", clientID, "candidates", len(apps), "matches", len(ranked))
	return ranked, nil
}

func (s *matchServiceImpl) candidates(ctx context.Context, clientID int64) (*entity.Client, []entity.LoanApplication, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load client %d: %w", clientID, err)
	}
	stored, err := s.appRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load applications for matching", "error", err, "client_id", clientID)
		return nil, nil, err
	}

	apps := make([]entity.LoanApplication, 0, len(stored))
	for _, a := range stored {
		apps = append(apps, *a)
	}
	return client, apps, nil
}
