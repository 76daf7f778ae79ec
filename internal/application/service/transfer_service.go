package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
)

// ImportReport summarises a bulk import.
type ImportReport struct {
	Imported   int             `json:"imported"`
	Failed     []port.RowError `json:"failed"`
	ArchivedAs string          `json:"archived_as,omitempty"`
}

// TransferService moves clients and applications in and out of Excel workbooks
type TransferService interface {
	ExportApplications(ctx context.Context, w io.Writer) (int, error)
	ExportClients(ctx context.Context, w io.Writer) (int, error)

	// ImportApplications submits every readable row as a new application
	// created by createdBy. Bad rows are reported, not fatal.
	ImportApplications(ctx context.Context, fileName string, r io.Reader, createdBy string) (*ImportReport, error)
	ImportClients(ctx context.Context, fileName string, r io.Reader) (*ImportReport, error)
}

type transferServiceImpl struct {
	codec      port.SpreadsheetCodec
	appRepo    port.ApplicationRepository
	clientRepo port.ClientRepository
	loans      LoanService
	clients    ClientService
	archive    port.FileStorage
	logger     Logger
}

// NewTransferService creates a new TransferService. archive may be nil, in
// which case uploaded workbooks are not kept.
func NewTransferService(
	codec port.SpreadsheetCodec,
	appRepo port.ApplicationRepository,
	clientRepo port.ClientRepository,
	loans LoanService,
	clients ClientService,
	archive port.FileStorage,
	logger Logger,
) TransferService {
	return &transferServiceImpl{
		codec:      codec,
		appRepo:    appRepo,
		clientRepo: clientRepo,
		loans:      loans,
		clients:    clients,
		archive:    archive,
		logger:     logger,
	}
}

func (s *transferServiceImpl) ExportApplications(ctx context.Context, w io.Writer) (int, error) {
	apps, err := s.appRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.codec.WriteApplications(w, apps); err != nil {
		s.logger.Error("Failed to export applications", "error", err)
		return 0, err
	}
	s.logger.Info("Applications exported", "count", len(apps))
	return len(apps), nil
}

func (s *transferServiceImpl) ExportClients(ctx context.Context, w io.Writer) (int, error) {
	clients, err := s.clientRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.codec.WriteClients(w, clients); err != nil {
		s.logger.Error("Failed to export clients", "error", err)
		return 0, err
	}
	s.logger.Info("Clients exported", "count", len(clients))
	return len(clients), nil
}

func (s *transferServiceImpl) ImportApplications(ctx context.Context, fileName string, r io.Reader, createdBy string) (*ImportReport, error) {
	data, archived, err := s.receive(ctx, "applications", fileName, r)
	if err != nil {
		return nil, err
	}

	rows, rowErrs, err := s.codec.ReadApplications(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	report := &ImportReport{Failed: rowErrs, ArchivedAs: archived}
	for _, row := range rows {
		if row.Application.CreatedBy == "" {
			row.Application.CreatedBy = createdBy
		}
		if _, err := s.loans.Submit(ctx, row.Application); err != nil {
			report.Failed = append(report.Failed, port.RowError{Row: row.Row, Message: err.Error()})
			continue
		}
		report.Imported++
	}

	s.logger.Info("Applications imported", "file", fileName, "imported", report.Imported, "failed", len(report.Failed))
	return report, nil
}

func (s *transferServiceImpl) ImportClients(ctx context.Context, fileName string, r io.Reader) (*ImportReport, error) {
	data, archived, err := s.receive(ctx, "clients", fileName, r)
	if err != nil {
		return nil, err
	}

	rows, rowErrs, err := s.codec.ReadClients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	report := &ImportReport{Failed: rowErrs, ArchivedAs: archived}
	for _, row := range rows {
		if _, err := s.clients.Create(ctx, row.Client); err != nil {
			report.Failed = append(report.Failed, port.RowError{Row: row.Row, Message: err.Error()})
			continue
		}
		report.Imported++
	}

	s.logger.Info("Clients imported", "file", fileName, "imported", report.Imported, "failed", len(report.Failed))
	return report, nil
}

// receive reads the upload and keeps a copy under imports/<kind>/.
func (s *transferServiceImpl) receive(ctx context.Context, kind, fileName string, r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if s.archive == nil {
		return data, "", nil
	}

	name := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(fileName))
	path := filepath.Join("imports", kind, name)
	if err := s.archive.Save(ctx, path, data); err != nil {
		s.logger.Error("Failed to archive import", "error", err, "file", fileName)
		return data, "", nil
	}
	return data, path, nil
}
