package database

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/vantagelabs/SignalVantage/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DBService struct {
	DB *gorm.DB
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&models.Signal{}, &models.SignalTracking{}, &models.BacktestResult{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

func init() {
	cwd, _ := os.Getwd()
	confFile := os.Getenv("CONF_FILE")
	if confFile == "" {
		confFile = "/conf.env"
	}
	_ = godotenv.Load(cwd + confFile)
}

func (dbs *DBService) CreateSignal(signal *models.Signal) error {
	if err := signal.Validate(); err != nil {
		return err
	}
	signal.Status = models.SignalStatusActive
	signal.ResultPnlPercent = nil
	signal.ClosedAt = nil
	return dbs.DB.Create(signal).Error
}

func (dbs *DBService) GetSignal(id uint) (*models.Signal, error) {
	var signal models.Signal
	err := dbs.DB.First(&signal, id).Error
	if err != nil {
		return nil, err
	}
	return &signal, nil
}

func (dbs *DBService) GetActiveSignals() ([]models.Signal, error) {
	var signals []models.Signal
	err := dbs.DB.Where("status = ?", models.SignalStatusActive).Find(&signals).Error
	return signals, err
}

// CloseSignal writes the terminal transition guarded on the signal still being
// active, so an overlapping pass can never resolve the same signal twice. The
// returned bool reports whether this call won the write.
func (dbs *DBService) CloseSignal(id uint, status models.SignalStatus, pnlPercent float64, closedAt time.Time) (bool, error) {
	if status == models.SignalStatusActive {
		return false, fmt.Errorf("error: active is not a terminal status")
	}
	result := dbs.DB.Model(&models.Signal{}).
		Where("id = ? AND status = ?", id, models.SignalStatusActive).
		Updates(map[string]interface{}{
			"status":             status,
			"result_pnl_percent": pnlPercent,
			"closed_at":          closedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (dbs *DBService) CancelSignal(id uint) (bool, error) {
	return dbs.CloseSignal(id, models.SignalStatusCancelled, 0, time.Now())
}

// AddTrackings appends a batch of price checks. There is no corresponding
// update or delete: the trail is immutable once written.
func (dbs *DBService) AddTrackings(trackings []models.SignalTracking) error {
	if len(trackings) == 0 {
		return nil
	}
	return dbs.DB.Create(&trackings).Error
}

func (dbs *DBService) GetTrackings(signalID uint) ([]models.SignalTracking, error) {
	var trackings []models.SignalTracking
	err := dbs.DB.Where("signal_id = ?", signalID).Order("checked_at asc").Find(&trackings).Error
	return trackings, err
}

// GetResolvedSignals returns the closed population for a category, cancelled
// excluded, in creation order. The backtest drawdown walk depends on that
// ordering.
func (dbs *DBService) GetResolvedSignals(category models.SignalCategory, start time.Time, end time.Time) ([]models.Signal, error) {
	var signals []models.Signal
	query := dbs.DB.Where("category = ? AND status NOT IN ?", category,
		[]models.SignalStatus{models.SignalStatusActive, models.SignalStatusCancelled})
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("created_at <= ?", end)
	}
	err := query.Order("created_at asc").Find(&signals).Error
	return signals, err
}

func (dbs *DBService) UpsertBacktestResult(result *models.BacktestResult) error {
	return dbs.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category"}, {Name: "period_start"}, {Name: "period_end"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_signals", "winning_signals", "win_rate", "avg_profit_percent",
			"avg_loss_percent", "max_drawdown_percent", "profit_factor",
			"total_pnl_percent", "monthly_breakdown", "updated_at",
		}),
	}).Create(result).Error
}

func (dbs *DBService) GetBacktestResult(category models.SignalCategory, periodStart time.Time, periodEnd time.Time) (*models.BacktestResult, error) {
	var result models.BacktestResult
	err := dbs.DB.Where("category = ? AND period_start = ? AND period_end = ?",
		category, periodStart, periodEnd).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
