package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/events"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type ReceiptController struct {
	DB *gorm.DB
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

func receiptDir() string {
	dir := os.Getenv("RECEIPT_DIR")
	if dir == "" {
		dir = "receipts"
	}
	return dir
}

// GenerateReceipt -> build the printable record for a paid order.
// One receipt per order; calling again returns the existing one.
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	var order models.Order
	if err := rc.DB.Preload("Items").Preload("Branch").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != models.OrderStatusPaid {
		respondServiceError(c, services.ErrInvalidState)
		return
	}

	var existing models.Receipt
	err := rc.DB.Preload("ReceiptItems").Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		utils.RespondJSON(c, http.StatusOK, "Receipt already issued", existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	receipt := models.Receipt{
		OrderID:        order.ID,
		ReceiptNumber:  fmt.Sprintf("RCP-%s-%06d", time.Now().Format("20060102"), order.ID),
		GSTNumber:      order.Branch.GSTNumber,
		Subtotal:       order.Subtotal,
		CGSTAmount:     order.CGSTAmount,
		SGSTAmount:     order.SGSTAmount,
		DiscountAmount: order.DiscountAmount,
		RoundOff:       order.RoundOff,
		Total:          order.TotalAmount,
		PaymentMethod:  order.PaymentMethod,
	}
	for _, item := range order.Items {
		receipt.ReceiptItems = append(receipt.ReceiptItems, models.ReceiptItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  utils.Round2(item.Price * float64(item.Quantity)),
		})
	}

	pdfPath, err := rc.writePDF(&order, &receipt)
	if err != nil {
		utils.ErrorLogger.Printf("Receipt PDF for order %d failed: %v", order.ID, err)
	} else {
		receipt.PDFPath = pdfPath
	}

	if err := rc.DB.Create(&receipt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastReceiptGenerated(receipt)
	utils.InfoLogger.Printf("Receipt %s issued for order %d", receipt.ReceiptNumber, order.ID)
	utils.RespondJSON(c, http.StatusCreated, "Receipt generated", receipt)
}

// writePDF renders an 80mm thermal-style slip.
func (rc *ReceiptController) writePDF(order *models.Order, receipt *models.Receipt) (string, error) {
	dir := receiptDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.AddPage()

	pdf.SetFont("Courier", "B", 11)
	pdf.CellFormat(70, 5, order.Branch.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "", 8)
	if receipt.GSTNumber != "" {
		pdf.CellFormat(70, 4, "GSTIN: "+receipt.GSTNumber, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(70, 4, receipt.ReceiptNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(70, 4, time.Now().Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Courier", "B", 8)
	pdf.CellFormat(34, 4, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(8, 4, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(14, 4, "Rate", "B", 0, "R", false, 0, "")
	pdf.CellFormat(14, 4, "Amt", "B", 1, "R", false, 0, "")

	pdf.SetFont("Courier", "", 8)
	for _, it := range receipt.ReceiptItems {
		pdf.CellFormat(34, 4, it.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(8, 4, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(14, 4, fmt.Sprintf("%.2f", it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(14, 4, fmt.Sprintf("%.2f", it.Subtotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)

	line := func(label string, amount float64) {
		pdf.CellFormat(42, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 4, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
	}
	line("Subtotal", receipt.Subtotal)
	if receipt.DiscountAmount > 0 {
		line("Discount", -receipt.DiscountAmount)
	}
	line(fmt.Sprintf("CGST @%.2f%%", order.CGSTRate), receipt.CGSTAmount)
	line(fmt.Sprintf("SGST @%.2f%%", order.SGSTRate), receipt.SGSTAmount)
	if receipt.RoundOff != 0 {
		line("Round off", receipt.RoundOff)
	}

	pdf.SetFont("Courier", "B", 10)
	pdf.CellFormat(42, 6, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, utils.FormatCurrencyINR(receipt.Total), "T", 1, "R", false, 0, "")

	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(70, 4, "Paid by "+receipt.PaymentMethod, "", 1, "C", false, 0, "")
	if order.Complementary {
		pdf.CellFormat(70, 4, "COMPLEMENTARY", "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.CellFormat(70, 4, "Thank you, visit again!", "", 1, "C", false, 0, "")

	path := filepath.Join(dir, receipt.ReceiptNumber+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// GetReceiptByID
func (rc *ReceiptController) GetReceiptByID(c *gin.Context) {
	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").First(&receipt, c.Param("receipt_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt retrieved", receipt)
}

// GetReceiptByOrder -> lookup by the order it belongs to
func (rc *ReceiptController) GetReceiptByOrder(c *gin.Context) {
	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Where("order_id = ?", c.Param("order_id")).First(&receipt).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt retrieved", receipt)
}
