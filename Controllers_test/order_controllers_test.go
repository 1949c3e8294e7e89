package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/controllers"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

func setupTestDBForOrders() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:orders_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(&models.User{}, &models.Branch{}, &models.Table{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{})
	if err != nil {
		panic(err)
	}
	// Seed data: satu branch GST 2.5/2.5 dan satu meja
	branch := models.Branch{Name: "Main Street", GSTNumber: "29ABCDE1234F1Z5", CGSTRate: 2.5, SGSTRate: 2.5}
	db.Create(&branch)
	table := models.Table{BranchID: branch.ID, TableNumber: "T1", Status: models.TableStatusAvailable}
	db.Create(&table)
	return db
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db,
		services.NewCouponValidator(),
		services.NewCancelService(db, services.NewPasscodeValidator(db)))
	router.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	router.PUT("/orders/:order_id/save", orderCtrl.SaveOrder)
	router.POST("/orders/:order_id/items", orderCtrl.AddItem)
	router.PATCH("/orders/:order_id/items/:item_id", orderCtrl.UpdateItemQuantity)
	router.DELETE("/orders/:order_id/items/:item_id", orderCtrl.RemoveItem)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestOrder(t *testing.T, router *gin.Engine) map[string]interface{} {
	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Masala Dosa", "price": 120.0, "quantity": 2, "source": "custom"},
			{"name": "Filter Coffee", "price": 70.0, "quantity": 2, "source": "custom"},
		},
	}
	w := postJSON(t, router, "POST", "/tables/1/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order created", resp["message"])
	return resp["data"].(map[string]interface{})
}

func TestCreateOrderComputesTotals(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)

	// 240 + 140 = 380, GST 2.5% + 2.5% => 9.50 each, grand total 399
	assert.Equal(t, 380.0, data["subtotal"])
	assert.Equal(t, 9.5, data["cgst_amount"])
	assert.Equal(t, 9.5, data["sgst_amount"])
	assert.Equal(t, 399.0, data["total_amount"])
	assert.Equal(t, "open", data["status"])
	assert.Equal(t, "unpaid", data["payment_status"])
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	w := postJSON(t, router, "POST", "/tables/1/orders", map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddAndRemoveItemRecalculates(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)
	orderID := strconv.Itoa(int(data["id"].(float64)))

	w := postJSON(t, router, "POST", "/orders/"+orderID+"/items", map[string]interface{}{
		"name": "Gulab Jamun", "price": 60.0, "quantity": 1, "source": "custom",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	updated := resp["data"].(map[string]interface{})
	// 440 subtotal, 11 + 11 tax => 462
	assert.Equal(t, 440.0, updated["subtotal"])
	assert.Equal(t, 462.0, updated["total_amount"])

	items := updated["items"].([]interface{})
	assert.Len(t, items, 3)
	lastItem := items[2].(map[string]interface{})
	itemID := strconv.Itoa(int(lastItem["id"].(float64)))

	w = postJSON(t, router, "DELETE", "/orders/"+orderID+"/items/"+itemID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	reverted := resp["data"].(map[string]interface{})
	assert.Equal(t, 399.0, reverted["total_amount"])
}

func TestQuantityDeltaToZeroRemovesItem(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)
	orderID := strconv.Itoa(int(data["id"].(float64)))
	items := data["items"].([]interface{})
	first := items[0].(map[string]interface{})
	itemID := strconv.Itoa(int(first["id"].(float64)))

	w := postJSON(t, router, "PATCH", "/orders/"+orderID+"/items/"+itemID, map[string]interface{}{
		"delta": -2,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	updated := resp["data"].(map[string]interface{})
	assert.Len(t, updated["items"].([]interface{}), 1)
	// tersisa 2x Filter Coffee = 140 + 3.5 + 3.5 = 147
	assert.Equal(t, 147.0, updated["total_amount"])
}

func TestDiscountWithCapIsApplied(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)
	orderID := strconv.Itoa(int(data["id"].(float64)))

	// 10% dari 380 = 38, dibatasi max 30
	w := postJSON(t, router, "PATCH", "/orders/"+orderID, map[string]interface{}{
		"discount": map[string]interface{}{
			"type": "percentage", "value": 10.0, "max_amount": 30.0,
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	updated := resp["data"].(map[string]interface{})
	assert.Equal(t, 30.0, updated["discount_amount"])
	// 380 + 19 pajak - 30 diskon = 369
	assert.Equal(t, 369.0, updated["total_amount"])
	assert.Equal(t, 0.0, updated["round_off"])
}

func TestComplementaryOrderZeroesTotal(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)
	orderID := strconv.Itoa(int(data["id"].(float64)))

	w := postJSON(t, router, "PATCH", "/orders/"+orderID, map[string]interface{}{
		"complementary": map[string]interface{}{"enabled": true},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code) // reason wajib

	w = postJSON(t, router, "PATCH", "/orders/"+orderID, map[string]interface{}{
		"complementary": map[string]interface{}{"enabled": true, "reason": "owner guest"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	updated := resp["data"].(map[string]interface{})
	assert.Equal(t, 0.0, updated["total_amount"])
	assert.Equal(t, 399.0, updated["complementary_amount"])
}

func TestSaveOrderRejectsStaleVersion(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders()
	router := setupOrderRouter(db)

	data := createTestOrder(t, router)
	orderID := strconv.Itoa(int(data["id"].(float64)))
	version := uint(data["version"].(float64))

	w := postJSON(t, router, "PUT", "/orders/"+orderID+"/save", map[string]interface{}{
		"version": version,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Terminal kedua masih memegang versi lama
	w = postJSON(t, router, "PUT", "/orders/"+orderID+"/save", map[string]interface{}{
		"version": version,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
