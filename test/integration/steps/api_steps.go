package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/savings-circle/backend/internal/domain/entity"
)

func registerAPISteps(ctx *godog.ScenarioContext, t *testContext) {
	// Auth steps
	ctx.Step(`^I am authenticated as "([^"]*)"$`, t.iAmAuthenticatedAs)
	ctx.Step(`^I am not authenticated$`, t.iAmNotAuthenticated)
	ctx.Step(`^I use an expired token for "([^"]*)"$`, t.iUseAnExpiredTokenFor)

	// Header steps
	ctx.Step(`^the header is empty$`, t.theHeaderIsEmpty)
	ctx.Step(`^the header contains the key "([^"]*)" with "([^"]*)"$`, t.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, t.iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, t.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, t.theResponseStatusShouldBe)
	ctx.Step(`^the response should be JSON$`, t.theResponseShouldBeJSON)
	ctx.Step(`^the response should contain "([^"]*)"$`, t.theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, t.theResponseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should exist$`, t.theResponseFieldShouldExist)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, t.theResponseFieldShouldHaveItems)
	ctx.Step(`^the response error code should be "([^"]*)"$`, t.theResponseErrorCodeShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, t.theResponseHeaderShouldBe)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, t.iSaveTheResponseFieldAs)
}

func (t *testContext) iAmAuthenticatedAs(userID string) error {
	token, err := t.tokenFor(userID, time.Hour)
	if err != nil {
		return err
	}
	t.accessToken = token
	return nil
}

func (t *testContext) iAmNotAuthenticated() error {
	t.accessToken = ""
	return nil
}

func (t *testContext) iUseAnExpiredTokenFor(userID string) error {
	token, err := t.tokenFor(userID, -time.Minute)
	if err != nil {
		return err
	}
	t.accessToken = token
	return nil
}

func (t *testContext) tokenFor(userID string, ttl time.Duration) (string, error) {
	return t.injector.TokenService.GenerateAccessToken(context.Background(), principal(userID), ttl)
}

func principal(userID string) entity.Principal {
	return entity.Principal{
		UserID: userID,
		Name:   strings.ToUpper(userID[:1]) + userID[1:],
		Email:  userID + "@example.com",
	}
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = t.expand(value)
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	return t.executeRequest(method, path, []byte(t.expand(body.Content)))
}

// expand replaces {name} placeholders with captured values.
func (t *testContext) expand(content string) string {
	for name, value := range t.vars {
		content = strings.ReplaceAll(content, "{"+name+"}", value)
	}
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.server.URL+t.expand(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	t.response = &response{status: resp.StatusCode, header: resp.Header, body: respBody}
	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return fmt.Errorf("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, t.response.status, string(t.response.body))
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return fmt.Errorf("no response received")
	}
	var js json.RawMessage
	if err := json.Unmarshal(t.response.body, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(expected string) error {
	if t.response == nil {
		return fmt.Errorf("no response received")
	}
	if !strings.Contains(string(t.response.body), t.expand(expected)) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(t.response.body))
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	value, err := t.responseField(field)
	if err != nil {
		return err
	}

	expectedValue = t.expand(expectedValue)
	actual := formatValue(value)
	if actual != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actual)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	_, err := t.responseField(field)
	return err
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	value, err := t.responseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		if value == nil && count == 0 {
			return nil
		}
		return fmt.Errorf("field '%s' is not a list: %v", field, value)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) theResponseErrorCodeShouldBe(code string) error {
	return t.theResponseFieldShouldBe("code", code)
}

func (t *testContext) theResponseHeaderShouldBe(header, expected string) error {
	if t.response == nil {
		return fmt.Errorf("no response received")
	}
	if actual := t.response.header.Get(header); actual != expected {
		return fmt.Errorf("header '%s' expected '%s', got '%s'", header, expected, actual)
	}
	return nil
}

func (t *testContext) iSaveTheResponseFieldAs(field, name string) error {
	value, err := t.responseField(field)
	if err != nil {
		return err
	}
	t.vars[name] = formatValue(value)
	return nil
}

// responseField resolves a dot separated path such as "group.current_balance.cents"
// or "members.1.role" in the last response.
func (t *testContext) responseField(field string) (any, error) {
	if t.response == nil {
		return nil, fmt.Errorf("no response received")
	}

	var data any
	if err := json.Unmarshal(t.response.body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	value, ok := getFieldValue(data, field)
	if !ok {
		return nil, fmt.Errorf("field '%s' not found in response: %s", field, string(t.response.body))
	}
	return value, nil
}

func getFieldValue(object any, dotSeparatedField string) (any, bool) {
	current := object
	for _, part := range strings.Split(dotSeparatedField, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
