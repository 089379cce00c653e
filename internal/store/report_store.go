package store

import (
	"github.com/google/uuid"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

func (s *Store) CreateReport(reporterID, reportedID, reason string) (*models.Report, error) {
	report := &models.Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     models.ReportOpen,
	}
	if err := s.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Store) ListReports() ([]models.Report, error) {
	var reports []models.Report
	err := s.db.Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (s *Store) UpdateReportStatus(id string, status models.ReportStatus) error {
	res := s.db.Model(&models.Report{}).Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
