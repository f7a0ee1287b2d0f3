package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSchema = "test_toplan"

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "toplan")
	password := getEnv("DB_PASSWORD", "toplan123")
	dbname := getEnv("DB_NAME", "toplan")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&entity.Project{}); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SampleModel builds a small plant model with one two-slot assembly,
// three units and a single maintenance type. Shared by engine and
// handler tests that need realistic structural data.
func SampleModel() *entity.StructuralModel {
	return &entity.StructuralModel{
		ID:   "model-1",
		Name: "Compressor station 3",
		ComponentTypes: []entity.ComponentType{
			{ID: "ct-engine", Name: "Engine"},
		},
		AssemblyTypes: []entity.AssemblyType{
			{
				ID:   "at-gpa",
				Name: "GPA-16",
				Components: []entity.Component{
					{ID: "slot-a", Name: "Engine slot A", ComponentTypeID: "ct-engine"},
					{ID: "slot-b", Name: "Engine slot B", ComponentTypeID: "ct-engine"},
				},
			},
		},
		PartModels: []entity.PartModel{
			{
				ID:              "pm-engine",
				Name:            "NK-16ST",
				ComponentTypeID: "ct-engine",
				Units: []entity.Unit{
					{ID: "unit-1", Name: "Engine #1", PartModelID: "pm-engine", SerialNumber: "SN-001"},
					{ID: "unit-2", Name: "Engine #2", PartModelID: "pm-engine", SerialNumber: "SN-002"},
					{ID: "unit-3", Name: "Engine #3", PartModelID: "pm-engine", SerialNumber: "SN-003"},
				},
				MaintenanceTypes: []entity.MaintenanceType{
					{ID: "mt-overhaul", Name: "Overhaul", Duration: 10, Priority: 1, Interval: 180, Deviation: 15, Color: "#d9730d"},
				},
			},
		},
		Nodes: []*entity.TreeNode{
			{
				ID:   "node-root",
				Type: entity.TreeItemNode,
				Name: "Shop 1",
				Children: []*entity.TreeNode{
					{
						ID:             "asm-1",
						Type:           entity.TreeItemAssembly,
						Name:           "GPA-16 #1",
						AssemblyTypeID: "at-gpa",
					},
				},
			},
		},
	}
}

// Date builds a UTC timestamp at midnight, shorthand for test timelines.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
