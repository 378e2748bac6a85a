package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

func (cc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("restaurant_id required"))
		return
	}

	var categories []models.MenuCategory
	if err := cc.DB.Where("restaurant_id = ?", restaurantID).Order("name").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (cc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurant_id" binding:"required,uuid"`
		Name         string `json:"name" binding:"required,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.MenuCategory{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (cc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	catID := c.Param("cat_id")

	var count int64
	cc.DB.Model(&models.MenuItem{}).Where("category_id = ?", catID).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("category still has menu items"))
		return
	}

	if err := cc.DB.Delete(&models.MenuCategory{}, "id = ?", catID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": catID})
}
