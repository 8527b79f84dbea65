// e2e_test.go
//
// Restaurant menu management data and authorization service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sharmers-menus.
// sharmers-menus is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sharmers-menus is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sharmers-menus.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/database"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/tests/helpers"
)

// stack is the running container set with its host-mapped endpoints.
type stack struct {
	tc       *helpers.TestContainers
	baseURL  string
	authzURL string
}

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" || os.Getenv("AUTHZ_IMAGE") == "" {
		t.Skip("Skipping E2E test, DB_IMAGE and AUTHZ_IMAGE are required")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	menusHost, _ := tc.MenusContainer.Host(ctx)
	menusPort, _ := tc.MenusContainer.MappedPort(ctx, nat.Port(os.Getenv("PORT")+"/tcp"))
	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, nat.Port(os.Getenv("AUTHZ_PORT")+"/tcp"))

	s := &stack{
		tc:       tc,
		baseURL:  fmt.Sprintf("http://%s:%s", menusHost, menusPort.Port()),
		authzURL: fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port()),
	}

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, s)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, s.baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, s.baseURL)
	})

	t.Run("PublicAPIAccess", func(t *testing.T) {
		testPublicAPIAccess(t, s.baseURL)
	})

	t.Run("OwnerFlow", func(t *testing.T) {
		testOwnerFlow(t, s)
	})
}

func testHealthCheck(t *testing.T, s *stack) {
	ctx := context.Background()

	// Point at the mapped ports on localhost, not internal container names
	cfg, err := dbConfig(s)
	if err != nil {
		t.Fatalf("Failed to prepare config: %v", err)
	}
	cfg.AuthProvider = "authorizer"
	cfg.AuthzURL = s.authzURL

	gormDB, err := database.Connect(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	result := services.HealthCheck(ctx, cfg, gormDB, logger.Discard())
	if !result.Healthy() {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, database=%s, authorizer=%s",
		result.Status, result.Database, result.Authorizer)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, string(body))
	}
	if !bytes.Contains(body, []byte("menus_http_requests_total")) {
		t.Errorf("Expected menus_http_requests_total metric")
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(body))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicAPIAccess(t *testing.T, baseURL string) {
	// A missing restaurant answers 404 with the JSON envelope
	resp, err := http.Get(baseURL + "/api/public/menus/999999")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		t.Logf("Response body: %s", string(body))
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
		return
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Errorf("Response is not valid JSON: %v", err)
	}
	if result["type"] != "not_found" {
		t.Errorf("Expected type not_found, got %v", result["type"])
	}

	resp, err = http.Get(baseURL + "/api/restaurants")
	if err != nil {
		t.Fatalf("Failed to list restaurants: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for restaurant list, got %d", resp.StatusCode)
	}
}

func testOwnerFlow(t *testing.T, s *stack) {
	email := helpers.UniqueEmail("e2e-owner")
	token := helpers.AcquireAccount(t, s.authzURL, os.Getenv("AUTHZ_CLIENT_ID"), email, helpers.GeneratePassword(), []string{"user"})

	resp := send(t, http.MethodPost, s.baseURL+"/api/restaurants", token, map[string]interface{}{
		"name":    "E2E Kitchen",
		"address": "9 Container Ln",
		"phone":   "555-0199",
		"cuisine": "Fusion",
		"email":   email,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating restaurant, got %d", resp.StatusCode)
	}
	var restaurant map[string]interface{}
	helpers.ParseJSON(t, resp, &restaurant)
	id := uint64(restaurant["id"].(float64))

	resp = send(t, http.MethodPost, fmt.Sprintf("%s/api/restaurants/%d/sections", s.baseURL, id), token,
		map[string]interface{}{"name": "Plates"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating section, got %d", resp.StatusCode)
	}
	var section map[string]interface{}
	helpers.ParseJSON(t, resp, &section)

	resp = send(t, http.MethodPost, fmt.Sprintf("%s/api/sections/%d/items", s.baseURL, uint64(section["id"].(float64))), token,
		map[string]interface{}{"name": "Dumplings", "price": "11.00", "dietary": []string{"Vegetarian"}})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = send(t, http.MethodGet, fmt.Sprintf("%s/api/public/menus/%d", s.baseURL, id), "", nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var menu map[string]interface{}
	helpers.ParseJSON(t, resp, &menu)
	if sections, _ := menu["sections"].([]interface{}); len(sections) != 1 {
		t.Errorf("Expected one public section, got %v", menu["sections"])
	}
}

func dbConfig(s *stack) (*config.Config, error) {
	ctx := context.Background()
	cfg := helpers.TestConfig()
	cfg.DBType = os.Getenv("DB_TYPE")
	dbHost, err := s.tc.DBContainer.Host(ctx)
	if err != nil {
		return nil, err
	}
	dbPort, err := s.tc.DBContainer.MappedPort(ctx, nat.Port(os.Getenv("DB_PORT")+"/tcp"))
	if err != nil {
		return nil, err
	}
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()
	cfg.DBAppDatabase = os.Getenv("DB_APP_DATABASE")
	cfg.DBAppUser = os.Getenv("DB_APP_USER")
	cfg.DBAppPassword = os.Getenv("DB_APP_PASSWORD")
	return cfg, nil
}

func send(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, url, err)
	}
	return resp
}
