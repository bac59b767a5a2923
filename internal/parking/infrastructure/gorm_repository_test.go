package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	zapAdapter "github.com/mateusmacedo/go-parking/pkg/infrastructure/zaplogger/adapter"
)

func newSQLiteTicketRepository(t *testing.T, tickets ...domain.Ticket) domain.TicketRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// cada conexão :memory: é um banco separado
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := NewGormTicketRepositoryFromDB(db, zapAdapter.NewNopAppLogger())
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, ticket := range tickets {
		if err := repo.Save(context.Background(), ticket); err != nil {
			t.Fatalf("save %s: %v", ticket.ID, err)
		}
	}
	return repo
}

func TestGormTicketRepository(t *testing.T) {
	t.Parallel()

	t.Run("has visited ignores the current ticket", func(t *testing.T) {
		t.Parallel()
		current := domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeCar, InTime: base}
		repo := newSQLiteTicketRepository(t, current)

		visited, err := repo.HasVisited(context.Background(), current)
		if err != nil || visited {
			t.Fatalf("expected first visit, got %v (err=%v)", visited, err)
		}

		out := base.Add(-23 * time.Hour)
		previous := domain.Ticket{ID: "t-0", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeCar, InTime: base.Add(-24 * time.Hour), OutTime: &out}
		if err := repo.Save(context.Background(), previous); err != nil {
			t.Fatalf("save previous: %v", err)
		}

		visited, err = repo.HasVisited(context.Background(), current)
		if err != nil || !visited {
			t.Fatalf("expected returning vehicle, got %v (err=%v)", visited, err)
		}
		visited, err = repo.HasVisited(context.Background(), domain.Ticket{ID: "t-new", VehicleRegNumber: "OTHER"})
		if err != nil || visited {
			t.Fatalf("expected unknown vehicle to be new, got %v (err=%v)", visited, err)
		}
	})

	t.Run("find open returns the latest open ticket", func(t *testing.T) {
		t.Parallel()
		out := base.Add(-time.Hour)
		repo := newSQLiteTicketRepository(t,
			domain.Ticket{ID: "closed", VehicleRegNumber: "ABC", InTime: base.Add(-2 * time.Hour), OutTime: &out},
			domain.Ticket{ID: "old-open", VehicleRegNumber: "ABC", InTime: base.Add(-30 * time.Minute)},
			domain.Ticket{ID: "new-open", VehicleRegNumber: "ABC", InTime: base},
		)

		ticket, err := repo.FindOpenByVehicle(context.Background(), "ABC")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ticket.ID != "new-open" || !ticket.IsOpen() {
			t.Fatalf("expected new-open, got %+v", ticket)
		}

		if _, err := repo.FindOpenByVehicle(context.Background(), "NONE"); !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})

	t.Run("find by vehicle orders newest first", func(t *testing.T) {
		t.Parallel()
		repo := newSQLiteTicketRepository(t,
			domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", InTime: base.Add(-48 * time.Hour)},
			domain.Ticket{ID: "t-3", VehicleRegNumber: "ABC", InTime: base},
			domain.Ticket{ID: "t-2", VehicleRegNumber: "ABC", InTime: base.Add(-24 * time.Hour)},
			domain.Ticket{ID: "x-1", VehicleRegNumber: "XYZ", InTime: base},
		)

		tickets, err := repo.FindByVehicle(context.Background(), "ABC")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tickets) != 3 || tickets[0].ID != "t-3" || tickets[1].ID != "t-2" || tickets[2].ID != "t-1" {
			t.Fatalf("unexpected order %+v", tickets)
		}
	})

	t.Run("close persists a zero price", func(t *testing.T) {
		t.Parallel()
		repo := newSQLiteTicketRepository(t, domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeBike, Price: 5, InTime: base})

		out := base.Add(20 * time.Minute)
		closed := domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeBike, Price: 0, InTime: base, OutTime: &out}
		if err := repo.CloseTicket(context.Background(), closed); err != nil {
			t.Fatalf("close: %v", err)
		}

		tickets, err := repo.FindByVehicle(context.Background(), "ABC")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tickets[0].Price != 0 {
			t.Fatalf("expected price 0 to be persisted, got %v", tickets[0].Price)
		}
		if tickets[0].OutTime == nil || !tickets[0].OutTime.Equal(out) {
			t.Fatalf("expected out time %v, got %v", out, tickets[0].OutTime)
		}
	})

	t.Run("close only succeeds while the ticket is open", func(t *testing.T) {
		t.Parallel()
		repo := newSQLiteTicketRepository(t, domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeCar, InTime: base})

		first := base.Add(time.Hour)
		if err := repo.CloseTicket(context.Background(), domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeCar, Price: 1.5, InTime: base, OutTime: &first}); err != nil {
			t.Fatalf("first close: %v", err)
		}
		second := base.Add(2 * time.Hour)
		err := repo.CloseTicket(context.Background(), domain.Ticket{ID: "t-1", VehicleRegNumber: "ABC", ParkingType: domain.ParkingTypeCar, Price: 3, InTime: base, OutTime: &second})
		if !errors.Is(err, domain.ErrTicketAlreadyClosed) {
			t.Fatalf("expected ErrTicketAlreadyClosed, got %v", err)
		}

		tickets, _ := repo.FindByVehicle(context.Background(), "ABC")
		if tickets[0].Price != 1.5 || !tickets[0].OutTime.Equal(first) {
			t.Fatalf("expected first close to be kept, got %+v", tickets[0])
		}
	})

	t.Run("close of a missing ticket is not found", func(t *testing.T) {
		t.Parallel()
		repo := newSQLiteTicketRepository(t)

		out := base
		err := repo.CloseTicket(context.Background(), domain.Ticket{ID: "missing", VehicleRegNumber: "ABC", InTime: base, OutTime: &out})
		if !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}
