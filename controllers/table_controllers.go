package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/config"
	"github.com/mesalink/mesalink/kds"
	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

type TableController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTableController(db *gorm.DB, cfg *config.Config) *TableController {
	return &TableController{DB: db, Cfg: cfg}
}

// menuURL is the target encoded into the table's printed QR code.
func (tc *TableController) menuURL(t models.Table) string {
	return fmt.Sprintf("%s/menu/%s/%s", tc.Cfg.PublicBaseURL, t.RestaurantID, t.ID)
}

// CreateTable provisions a new table for a restaurant.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurant_id" binding:"required,uuid"`
		TableNumber  int    `json:"table_number" binding:"required,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		RestaurantID: req.RestaurantID,
		TableNumber:  req.TableNumber,
		IsActive:     true,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdate(table)

	utils.InfoLogger.Printf("table %d created for restaurant %s", table.TableNumber, table.RestaurantID)
	utils.RespondJSON(c, http.StatusCreated, "Table created", gin.H{
		"table":    table,
		"menu_url": tc.menuURL(table),
	})
}

// GetAllTables lists a restaurant's tables with their QR targets.
func (tc *TableController) GetAllTables(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("restaurant_id required"))
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("restaurant_id = ?", restaurantID).Order("table_number").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	out := make([]gin.H, 0, len(tables))
	for _, t := range tables {
		out = append(out, gin.H{
			"table":    t,
			"menu_url": tc.menuURL(t),
		})
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", out)
}

// SetTableActive flips the active flag. Deactivated tables stop
// yielding sessions immediately; existing tokens are not honored for
// new sessions but order submission still checks expiry as usual.
func (tc *TableController) SetTableActive(c *gin.Context) {
	tableID := c.Param("table_id")

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, "id = ?", tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table.IsActive = *req.IsActive
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdate(table)

	utils.InfoLogger.Printf("table %s active=%v", table.ID, table.IsActive)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// GetTableByID returns one table with its QR target.
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, "id = ?", tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table detail", gin.H{
		"table":    table,
		"menu_url": tc.menuURL(table),
	})
}
