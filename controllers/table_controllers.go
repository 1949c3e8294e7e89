package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/events"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> register a physical table under a branch
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		BranchID    uint   `json:"branch_id" binding:"required"`
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
		Location    string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var branch models.Branch
	if err := tc.DB.First(&branch, req.BranchID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table := models.Table{
		BranchID:    req.BranchID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Status:      models.TableStatusAvailable,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %s created for branch %d", table.TableNumber, table.BranchID)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// GetAllTables -> floor overview, optionally filtered by branch
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Order("table_number asc")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tables retrieved", tables)
}

// tableAggregates sums the table's open orders for the floor view.
type tableAggregates struct {
	OrderCount    int64    `json:"order_count"`
	TotalAmount   float64  `json:"total_amount"`
	UnpaidAmount  float64  `json:"unpaid_amount"`
	OccupiedSince *string  `json:"occupied_since"`
	ElapsedSec    *float64 `json:"elapsed_seconds"`
}

func (tc *TableController) aggregatesFor(tableID uint) (tableAggregates, error) {
	var agg tableAggregates

	var orders []models.Order
	if err := tc.DB.Where("table_id = ? AND status = ?", tableID, models.OrderStatusOpen).
		Order("created_at asc").Find(&orders).Error; err != nil {
		return agg, err
	}

	agg.OrderCount = int64(len(orders))
	for _, o := range orders {
		agg.TotalAmount += o.TotalAmount
		if o.PaymentStatus != models.PaymentStatusPaid {
			agg.UnpaidAmount += o.TotalAmount
		}
	}
	if len(orders) > 0 {
		since := orders[0].CreatedAt
		stamp := since.Format(time.RFC3339)
		elapsed := time.Since(since).Seconds()
		agg.OccupiedSince = &stamp
		agg.ElapsedSec = &elapsed
	}
	return agg, nil
}

// GetTableByID -> table detail with open-order aggregates
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	agg, err := tc.aggregatesFor(table.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table retrieved", gin.H{
		"table":      table,
		"aggregates": agg,
	})
}

// FindTablesByStatus -> e.g. /tables/status/available
func (tc *TableController) FindTablesByStatus(c *gin.Context) {
	status := c.Param("status")
	if !models.ValidTableStatus(status) {
		respondServiceError(c, services.NewValidationError("unknown table status"))
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("status = ?", status).Order("table_number asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tables retrieved", tables)
}

// UpdateTableStatus -> any status may move to any other. Releasing a
// table that still carries unpaid open orders is allowed but logged so
// the shift report can pick it up.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidTableStatus(req.Status) {
		respondServiceError(c, services.NewValidationError("unknown table status"))
		return
	}

	if req.Status == models.TableStatusAvailable || req.Status == models.TableStatusMaintenance {
		agg, err := tc.aggregatesFor(table.ID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if agg.UnpaidAmount > 0 {
			utils.ErrorLogger.Printf("Table %d moved to %s with %.2f unpaid across %d open orders",
				table.ID, req.Status, agg.UnpaidAmount, agg.OrderCount)
		}
	}

	previous := table.Status
	table.Status = req.Status
	if err := tc.DB.Model(&table).Update("status", req.Status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %d status %s -> %s", table.ID, previous, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> admin only; refuse while orders are still open
func (tc *TableController) DeleteTable(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var openCount int64
	if err := tc.DB.Model(&models.Order{}).
		Where("table_id = ? AND status = ?", table.ID, models.OrderStatusOpen).
		Count(&openCount).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if openCount > 0 {
		respondServiceError(c, services.ErrInvalidState)
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}
