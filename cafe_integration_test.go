package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/router"
	"github.com/yeremiapane/cafe-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndCheckout menguji flow utama:
// 0. Register manager + login -> token
// 1. Buat branch dan meja
// 2. Buka order dengan beberapa item
// 3. Save eksplisit (version guard)
// 4. Split payment sampai lunas
// 5. Checkout => paid
// 6. Meja ditandai paid oleh staff
// 7. Generate receipt
func TestEndToEndCheckout(t *testing.T) {
	os.Setenv("RECEIPT_DIR", t.TempDir())
	gin.SetMode(gin.TestMode)

	db := setupTestDB()
	r := router.SetupRouter(db)

	token := registerAndLogin(t, r)

	branchID := createBranch(t, r, token)
	tableID := createTable(t, r, token, branchID)

	order := openOrder(t, r, token, tableID)
	orderID := int(order["id"].(float64))
	assert.Equal(t, 399.0, order["total_amount"])

	version := saveOrder(t, r, token, orderID, uint(order["version"].(float64)))
	assert.Greater(t, version, uint(1))

	addSplitPayment(t, r, token, orderID, "cash", 200, false)
	addSplitPayment(t, r, token, orderID, "card", 500, true) // dipotong ke 199

	checkoutOrder(t, r, token, orderID)

	markTablePaid(t, r, token, tableID)

	generateReceipt(t, r, token, orderID)
}

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Receipt{},
		&models.ReceiptItem{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	assert.True(t, ok, "response data missing: %s", w.Body.String())
	return data
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/register", "", map[string]interface{}{
		"name":     "Shift Admin",
		"email":    "admin@cafepos.test",
		"password": "secret123",
		"role":     "admin",
		"passcode": "4321",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/login", "", map[string]interface{}{
		"email":    "admin@cafepos.test",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	token, ok := data["token"].(string)
	assert.True(t, ok)
	return token
}

func createBranch(t *testing.T, r *gin.Engine, token string) int {
	w := doJSON(t, r, "POST", "/api/branches", token, map[string]interface{}{
		"name":       "MG Road",
		"gst_number": "29ABCDE1234F1Z5",
		"cgst_rate":  2.5,
		"sgst_rate":  2.5,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return int(decodeData(t, w)["id"].(float64))
}

func createTable(t *testing.T, r *gin.Engine, token string, branchID int) int {
	w := doJSON(t, r, "POST", "/api/tables", token, map[string]interface{}{
		"branch_id":    branchID,
		"table_number": "T1",
		"capacity":     4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return int(decodeData(t, w)["id"].(float64))
}

func openOrder(t *testing.T, r *gin.Engine, token string, tableID int) map[string]interface{} {
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/tables/%d/orders", tableID), token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Masala Dosa", "price": 120.0, "quantity": 2, "source": "custom"},
			{"name": "Filter Coffee", "price": 70.0, "quantity": 2, "source": "custom"},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	return decodeData(t, w)
}

func saveOrder(t *testing.T, r *gin.Engine, token string, orderID int, version uint) uint {
	w := doJSON(t, r, "PUT", fmt.Sprintf("/api/orders/%d/save", orderID), token, map[string]interface{}{
		"version": version,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	return uint(decodeData(t, w)["version"].(float64))
}

func addSplitPayment(t *testing.T, r *gin.Engine, token string, orderID int, method string, amount float64, settles bool) {
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/payments", orderID), token, map[string]interface{}{
		"method": method,
		"amount": amount,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, settles, data["is_settled"])
}

func checkoutOrder(t *testing.T, r *gin.Engine, token string, orderID int) {
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/checkout", orderID), token, map[string]interface{}{
		"is_split": true,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "paid", data["status"])
	assert.Equal(t, "paid", data["payment_status"])
	assert.Equal(t, "mixed", data["payment_method"])
}

func markTablePaid(t *testing.T, r *gin.Engine, token string, tableID int) {
	w := doJSON(t, r, "PATCH", fmt.Sprintf("/api/tables/%d/status", tableID), token, map[string]interface{}{
		"status": models.TableStatusPaid,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TableStatusPaid, decodeData(t, w)["status"])
}

func generateReceipt(t *testing.T, r *gin.Engine, token string, orderID int) {
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/receipt", orderID), token, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, 399.0, data["total"])
	assert.NotEmpty(t, data["receipt_number"])

	// Idempotent: panggilan kedua mengembalikan receipt yang sama
	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/receipt", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data["receipt_number"], decodeData(t, w)["receipt_number"])
}

// TestCancelFlow menguji guard dua langkah untuk membatalkan order.
func TestCancelFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB()
	r := router.SetupRouter(db)

	token := loginExisting(t, r)

	branchID := createBranch(t, r, token)
	tableID := createTable(t, r, token, branchID)
	order := openOrder(t, r, token, tableID)
	orderID := int(order["id"].(float64))

	// Tanpa token konfirmasi => ditolak
	w := doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), token, map[string]interface{}{
		"credential": "4321",
		"reason":     "wrong table",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel/request", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	cancelToken := decodeData(t, w)["token"].(string)

	// Credential salah => 403 generik
	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), token, map[string]interface{}{
		"token":      cancelToken,
		"credential": "0000",
		"reason":     "wrong table",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/orders/%d/cancel", orderID), token, map[string]interface{}{
		"token":      cancelToken,
		"credential": "4321",
		"reason":     "wrong table",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "cancelled", data["status"])
	assert.Equal(t, "wrong table", data["cancel_reason"])
}

// loginExisting memakai user yang dibuat test sebelumnya pada DB shared.
func loginExisting(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/login", "", map[string]interface{}{
		"email":    "admin@cafepos.test",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		return registerAndLogin(t, r)
	}
	return decodeData(t, w)["token"].(string)
}
