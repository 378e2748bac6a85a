package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenuItems is the public read used by the diner menu page.
// Only available items are returned unless include_unavailable is set
// (owner tooling).
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("restaurant_id required"))
		return
	}

	query := mc.DB.Where("restaurant_id = ?", restaurantID)
	if c.Query("include_unavailable") == "" {
		query = query.Where("available = ?", true)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var items []models.MenuItem
	if err := query.Order("name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

type menuItemReq struct {
	RestaurantID string   `json:"restaurant_id" binding:"required,uuid"`
	CategoryID   string   `json:"category_id" binding:"required,uuid"`
	Name         string   `json:"name" binding:"required,max=120"`
	Description  string   `json:"description" binding:"max=1000"`
	Price        float64  `json:"price" binding:"gte=0"`
	Images       []string `json:"images"`
	Allergens    []string `json:"allergens"`
	Available    *bool    `json:"available"`
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req menuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		RestaurantID: req.RestaurantID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Images:       req.Images,
		Allergens:    req.Allergens,
		Available:    true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("menu item %s created (%s)", item.ID, item.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem edits catalog data. Historical orders are unaffected
// because order items carry their own name/price snapshots.
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	itemID := c.Param("item_id")

	var item models.MenuItem
	if err := mc.DB.First(&item, "id = ?", itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		CategoryID  *string   `json:"category_id"`
		Name        *string   `json:"name"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Images      *[]string `json:"images"`
		Allergens   *[]string `json:"allergens"`
		Available   *bool     `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID != nil {
		item.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("price cannot be negative"))
			return
		}
		item.Price = *req.Price
	}
	if req.Images != nil {
		item.Images = *req.Images
	}
	if req.Allergens != nil {
		item.Allergens = *req.Allergens
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	itemID := c.Param("item_id")

	if err := mc.DB.Delete(&models.MenuItem{}, "id = ?", itemID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"item_id": itemID})
}
