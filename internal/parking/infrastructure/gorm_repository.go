package infrastructure

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/pkg/application"
)

type gormTicketRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormTicketRepository(dsn string, logger application.AppLogger) (domain.TicketRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGormTicketRepositoryFromDB(db, logger)
}

// NewGormTicketRepositoryFromDB aplica a migração da tabela de tickets em uma conexão existente.
func NewGormTicketRepositoryFromDB(db *gorm.DB, logger application.AppLogger) (domain.TicketRepository, error) {
	if err := db.AutoMigrate(&domain.Ticket{}); err != nil {
		return nil, err
	}

	return &gormTicketRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormTicketRepository) Save(ctx context.Context, ticket domain.Ticket) error {
	if err := r.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to save ticket", err, map[string]interface{}{
			"ticket": ticket,
		})
		return err
	}

	application.LogDebug(ctx, r.logger, "ticket saved", map[string]interface{}{"ticket_id": ticket.ID})
	return nil
}

// CloseTicket usa Select("*") para gravar também campos zerados, como preço 0 na franquia.
// A condição out_time IS NULL impede que duas saídas concorrentes encerrem o mesmo ticket.
func (r *gormTicketRepository) CloseTicket(ctx context.Context, ticket domain.Ticket) error {
	result := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("id = ? AND out_time IS NULL", ticket.ID).
		Select("*").
		Updates(ticket)
	if result.Error != nil {
		application.LogError(ctx, r.logger, "failed to close ticket", result.Error, map[string]interface{}{
			"ticket": ticket,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.closeConflict(ctx, ticket.ID)
	}

	application.LogDebug(ctx, r.logger, "ticket closed", map[string]interface{}{"ticket_id": ticket.ID})
	return nil
}

func (r *gormTicketRepository) closeConflict(ctx context.Context, ticketID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Ticket{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrTicketNotFound
	}
	return domain.ErrTicketAlreadyClosed
}

func (r *gormTicketRepository) FindOpenByVehicle(ctx context.Context, vehicleRegNumber string) (domain.Ticket, error) {
	var ticket domain.Ticket

	err := r.db.WithContext(ctx).
		Where("vehicle_reg_number = ? AND out_time IS NULL", vehicleRegNumber).
		Order("in_time desc").
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err != nil {
		application.LogError(ctx, r.logger, "failed to find open ticket", err, map[string]interface{}{
			"vehicle_reg_number": vehicleRegNumber,
		})
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *gormTicketRepository) FindByVehicle(ctx context.Context, vehicleRegNumber string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket

	if err := r.db.WithContext(ctx).Where("vehicle_reg_number = ?", vehicleRegNumber).Order("in_time desc").Find(&tickets).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to find tickets", err, map[string]interface{}{
			"vehicle_reg_number": vehicleRegNumber,
		})
		return nil, err
	}
	return tickets, nil
}

func (r *gormTicketRepository) HasVisited(ctx context.Context, ticket domain.Ticket) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("vehicle_reg_number = ? AND id <> ?", ticket.VehicleRegNumber, ticket.ID).
		Count(&count).Error
	if err != nil {
		application.LogError(ctx, r.logger, "failed to count visits", err, map[string]interface{}{
			"vehicle_reg_number": ticket.VehicleRegNumber,
		})
		return false, err
	}
	return count > 0, nil
}
