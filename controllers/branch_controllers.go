package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

type BranchController struct {
	DB *gorm.DB
}

func NewBranchController(db *gorm.DB) *BranchController {
	return &BranchController{DB: db}
}

// CreateBranch -> admin registers an outlet with its GST profile
func (bc *BranchController) CreateBranch(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name      string  `json:"name" binding:"required"`
		GSTNumber string  `json:"gst_number"`
		CGSTRate  float64 `json:"cgst_rate"`
		SGSTRate  float64 `json:"sgst_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	branch := models.Branch{
		Name:      req.Name,
		GSTNumber: req.GSTNumber,
		CGSTRate:  req.CGSTRate,
		SGSTRate:  req.SGSTRate,
	}
	if err := bc.DB.Create(&branch).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Branch created: %s (cgst=%.2f sgst=%.2f)", branch.Name, branch.CGSTRate, branch.SGSTRate)
	utils.RespondJSON(c, http.StatusCreated, "Branch created", branch)
}

// GetTaxProfile -> the rates a terminal snapshots onto new orders
func (bc *BranchController) GetTaxProfile(c *gin.Context) {
	branchID := c.Param("branch_id")

	var branch models.Branch
	if err := bc.DB.First(&branch, branchID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Branch tax profile", gin.H{
		"cgst_rate":  branch.CGSTRate,
		"sgst_rate":  branch.SGSTRate,
		"gst_number": branch.GSTNumber,
	})
}
