package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ExportService produces admin-facing spreadsheet reports.
type ExportService interface {
	ExportConsultations(ctx context.Context, actor Actor) ([]byte, error)
	ExportDonations(ctx context.Context, actor Actor) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const exportBatchSize = 500

func (s *exportService) ExportConsultations(ctx context.Context, actor Actor) ([]byte, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	consultations, err := s.collectConsultations(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Consultations"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Status", "Full Name", "Email", "Phone", "Department",
		"School Level", "Problem Description", "Preferred Time",
		"Consultant", "Talents", "Special Care", "Created At", "Last Message At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, c := range consultations {
		consultantName := ""
		if c.Consultant != nil {
			consultantName = c.Consultant.FullName
		}
		lastMessage := ""
		if c.LastMessageAt != nil {
			lastMessage = c.LastMessageAt.Format("2006-01-02 15:04:05")
		}

		row := []interface{}{
			c.ID,
			string(c.Status),
			c.FullName,
			c.Email,
			c.PhoneNumber,
			c.DepartmentName,
			string(c.SchoolLevel),
			c.ProblemDescription,
			c.PreferredTime,
			consultantName,
			joinJSONList(c.Talents),
			joinJSONList(c.SpecialCare),
			c.CreatedAt.Format("2006-01-02 15:04:05"),
			lastMessage,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Consultation export generated", "rows", len(consultations), "requested_by", actor.ID)
	return buf.Bytes(), nil
}

func (s *exportService) ExportDonations(ctx context.Context, actor Actor) ([]byte, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	donations, err := s.collectDonations(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Donations"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Name", "Email", "Phone", "Amount", "Transaction ID", "Date"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	var total float64
	for rowIndex, d := range donations {
		email := ""
		if d.Email != nil {
			email = *d.Email
		}
		row := []interface{}{
			d.ID,
			d.Name,
			email,
			d.PhoneNumber,
			d.Amount,
			d.TransactionID,
			d.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
		total += d.Amount
	}

	totalRow := len(donations) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", totalRow), "Total")
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", totalRow), total)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Donation export generated", "rows", len(donations), "requested_by", actor.ID)
	return buf.Bytes(), nil
}

func (s *exportService) collectConsultations(ctx context.Context) ([]*models.Consultation, error) {
	var all []*models.Consultation
	for offset := 0; ; offset += exportBatchSize {
		batch, _, err := s.repo.Consultation().List(ctx, repositories.ConsultationFilters{
			Limit:  exportBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list consultations: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize {
			return all, nil
		}
	}
}

func (s *exportService) collectDonations(ctx context.Context) ([]*models.Donation, error) {
	var all []*models.Donation
	for offset := 0; ; offset += exportBatchSize {
		batch, _, err := s.repo.Donation().List(ctx, repositories.DonationFilters{
			Limit:  exportBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list donations: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize {
			return all, nil
		}
	}
}

func joinJSONList(data datatypes.JSON) string {
	if len(data) == 0 {
		return ""
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return string(data)
	}
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
