package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the pocket service is running$`, tc.pocketServiceIsRunning)

	// Pocket steps
	ctx.Step(`^I create pocket "([^"]*)" for "([^"]*)"$`, tc.createPocket)
	ctx.Step(`^I get pocket "([^"]*)"$`, tc.getPocket)
	ctx.Step(`^I log out of pocket "([^"]*)"$`, tc.logout)
	ctx.Step(`^I upload document "([^"]*)" of (\d+) bytes to pocket "([^"]*)"$`, tc.uploadDocument)
	ctx.Step(`^pocket "([^"]*)" holds a credential for "([^"]*)" of (\d+) bytes$`, tc.pocketHoldsCredential)
	ctx.Step(`^pocket "([^"]*)" should hold (\d+) credentials$`, tc.pocketShouldHoldCredentials)

	// Proof steps
	ctx.Step(`^I share claims "([^"]*)" from the last credential of pocket "([^"]*)"$`, tc.shareClaims)
	ctx.Step(`^I verify the last shared proof$`, tc.verifyLastProof)
	ctx.Step(`^I verify proof data:$`, tc.verifyProofData)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response should not contain "([^"]*)"$`, tc.responseShouldNotContain)
}

func (tc *TestContext) pocketServiceIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live"); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) createPocket(_ context.Context, pocketID, name string) error {
	return tc.POST("/pockets/"+pocketID, map[string]string{"display_name": name})
}

func (tc *TestContext) getPocket(_ context.Context, pocketID string) error {
	return tc.GET("/pockets/" + pocketID)
}

func (tc *TestContext) logout(_ context.Context, pocketID string) error {
	return tc.DELETE("/pockets/" + pocketID)
}

func (tc *TestContext) uploadDocument(_ context.Context, fileName string, size int, pocketID string) error {
	if err := tc.Upload("/pockets/"+pocketID+"/credentials", fileName, size); err != nil {
		return err
	}
	if id, err := tc.GetResponseField("id"); err == nil {
		tc.LastCredentialID, _ = id.(string)
	}
	return nil
}

func (tc *TestContext) pocketHoldsCredential(ctx context.Context, pocketID, fileName string, size int) error {
	if err := tc.createPocket(ctx, pocketID, "Alice"); err != nil {
		return err
	}
	if err := tc.responseStatusShouldBe(ctx, 201); err != nil {
		return err
	}
	if err := tc.uploadDocument(ctx, fileName, size, pocketID); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 201)
}

func (tc *TestContext) pocketShouldHoldCredentials(_ context.Context, pocketID string, count int) error {
	if err := tc.GET("/pockets/" + pocketID + "/credentials"); err != nil {
		return err
	}
	var res struct {
		Credentials []json.RawMessage `json:"credentials"`
	}
	if err := json.Unmarshal(tc.LastResponseBody, &res); err != nil {
		return fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	if len(res.Credentials) != count {
		return fmt.Errorf("expected %d credentials, got %d", count, len(res.Credentials))
	}
	return nil
}

func (tc *TestContext) shareClaims(_ context.Context, claims, pocketID string) error {
	if tc.LastCredentialID == "" {
		return fmt.Errorf("no credential issued in this scenario")
	}
	keys := []string{}
	for _, k := range strings.Split(claims, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	path := fmt.Sprintf("/pockets/%s/credentials/%s/proofs", pocketID, tc.LastCredentialID)
	if err := tc.POST(path, map[string][]string{"claims": keys}); err != nil {
		return err
	}
	if tc.GetLastResponseStatus() == 200 {
		tc.LastProof = append([]byte(nil), tc.LastResponseBody...)
	}
	return nil
}

func (tc *TestContext) verifyLastProof(_ context.Context) error {
	if tc.LastProof == nil {
		return fmt.Errorf("no proof shared in this scenario")
	}
	return tc.POSTRaw("/proofs/verify", tc.LastProof)
}

func (tc *TestContext) verifyProofData(_ context.Context, data *godog.DocString) error {
	return tc.POSTRaw("/proofs/verify", []byte(data.Content))
}

func (tc *TestContext) responseStatusShouldBe(_ context.Context, expected int) error {
	if got := tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(_ context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected field %s to equal %q, got %q", field, expected, got)
	}
	return nil
}

func (tc *TestContext) responseShouldNotContain(_ context.Context, text string) error {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return fmt.Errorf("response unexpectedly contains %q", text)
	}
	return nil
}
