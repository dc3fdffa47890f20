package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/domain/valueobject"
	"github.com/savings-circle/backend/internal/integration/persistence/model"
)

func registerCircleSteps(ctx *godog.ScenarioContext, t *testContext) {
	// Setup steps
	ctx.Step(`^the platform fee is "([^"]*)"$`, t.thePlatformFeeIs)
	ctx.Step(`^"([^"]*)" has created the group "([^"]*)" with contribution "([^"]*)"$`, t.hasCreatedTheGroup)
	ctx.Step(`^"([^"]*)" has joined the group$`, t.hasJoinedTheGroup)
	ctx.Step(`^"([^"]*)" has an active subscription$`, t.hasAnActiveSubscription)
	ctx.Step(`^"([^"]*)" has an approved contribution of "([^"]*)"$`, t.hasAnApprovedContributionOf)
	ctx.Step(`^"([^"]*)" has submitted a claim of "([^"]*)" saved as "([^"]*)"$`, t.hasSubmittedAClaimSavedAs)

	// Clock and background job steps
	ctx.Step(`^the clock moves forward by "([^"]*)"$`, t.theClockMovesForwardBy)
	ctx.Step(`^the subscription sweep runs$`, t.theSubscriptionSweepRuns)

	// Database assertion steps
	ctx.Step(`^the db should contain (\d+) objects in the "([^"]*)" table$`, t.theDbShouldContainObjectsInTheTable)
	ctx.Step(`^the stored group balance should be "([^"]*)"$`, t.theStoredGroupBalanceShouldBe)
	ctx.Step(`^the stored subscription of "([^"]*)" should be "([^"]*)"$`, t.theStoredSubscriptionShouldBe)

	// Side effect assertion steps
	ctx.Step(`^the response should not contain the invite code$`, t.theResponseShouldNotContainTheInviteCode)
	ctx.Step(`^(\d+) emails? should be sent to "([^"]*)"$`, t.emailsShouldBeSentTo)
	ctx.Step(`^an? "([^"]*)" event should be published$`, t.anEventShouldBePublished)
}

// as runs fn with the token of userID and restores the current caller afterwards.
func (t *testContext) as(userID string, fn func() error) error {
	previous := t.accessToken
	defer func() { t.accessToken = previous }()

	if err := t.iAmAuthenticatedAs(userID); err != nil {
		return err
	}
	return fn()
}

func (t *testContext) expectStatus(status int, method, path string, body map[string]any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = encoded
	}
	if err := t.executeRequest(method, path, payload); err != nil {
		return err
	}
	return t.theResponseStatusShouldBe(status)
}

func (t *testContext) thePlatformFeeIs(amount string) error {
	cents, err := valueobject.ParseAmount(amount)
	if err != nil {
		return err
	}
	return t.injector.Settings.SetSubscriptionFeeCents(context.Background(), cents)
}

func (t *testContext) hasCreatedTheGroup(userID, name, contribution string) error {
	return t.as(userID, func() error {
		err := t.expectStatus(http.StatusCreated, http.MethodPost, "/api/v1/groups", map[string]any{
			"name":                name,
			"contribution_amount": contribution,
			"currency":            "GHS",
		})
		if err != nil {
			return err
		}
		if err := t.iSaveTheResponseFieldAs("group.id", "group_id"); err != nil {
			return err
		}
		t.groupOwner = userID
		return t.iSaveTheResponseFieldAs("group.invite_code", "invite_code")
	})
}

func (t *testContext) hasJoinedTheGroup(userID string) error {
	return t.as(userID, func() error {
		return t.expectStatus(http.StatusOK, http.MethodPost, "/api/v1/groups/join", map[string]any{
			"invite_code": t.vars["invite_code"],
		})
	})
}

func (t *testContext) hasAnActiveSubscription(userID string) error {
	return t.as(userID, func() error {
		return t.expectStatus(http.StatusOK, http.MethodPost, "/api/v1/groups/{group_id}/subscription/free", nil)
	})
}

func (t *testContext) hasSubmittedAClaimSavedAs(userID, amount, name string) error {
	return t.as(userID, func() error {
		err := t.expectStatus(http.StatusCreated, http.MethodPost, "/api/v1/groups/{group_id}/claims", map[string]any{
			"amount":    amount,
			"reference": "MOMO-" + userID,
		})
		if err != nil {
			return err
		}
		return t.iSaveTheResponseFieldAs("id", name)
	})
}

func (t *testContext) hasAnApprovedContributionOf(userID, amount string) error {
	if err := t.hasSubmittedAClaimSavedAs(userID, amount, "setup_claim"); err != nil {
		return err
	}
	return t.as(t.groupOwner, func() error {
		return t.expectStatus(http.StatusOK, http.MethodPost, "/api/v1/groups/{group_id}/claims/{setup_claim}/process", map[string]any{
			"action": "approve",
		})
	})
}

func (t *testContext) theClockMovesForwardBy(duration string) error {
	d, err := time.ParseDuration(duration)
	if err != nil {
		return err
	}
	t.timeMock.Advance(d)
	return nil
}

func (t *testContext) theSubscriptionSweepRuns() error {
	out, err := t.injector.Sweeper.Execute(context.Background())
	if err != nil {
		return err
	}
	if out.Failed > 0 {
		return fmt.Errorf("sweep failed for %d members", out.Failed)
	}
	return nil
}

// theDbShouldContainObjectsInTheTable waits for the count since some tables are
// written by the event dispatcher after the response.
func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	m, ok := t.db.GetModel(table)
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	return eventually(func() error {
		var count int64
		if err := t.db.DbConn.Model(m).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(quantity) {
			return fmt.Errorf("expected %d rows in %s, got %d", quantity, table, count)
		}
		return nil
	})
}

func (t *testContext) theStoredGroupBalanceShouldBe(amount string) error {
	cents, err := valueobject.ParseAmount(amount)
	if err != nil {
		return err
	}

	var group model.GroupModel
	if err := t.db.DbConn.Where("id = ?", t.vars["group_id"]).First(&group).Error; err != nil {
		return err
	}
	if group.CurrentBalanceCents != cents {
		return fmt.Errorf("expected group balance %d, got %d", cents, group.CurrentBalanceCents)
	}
	return nil
}

func (t *testContext) theStoredSubscriptionShouldBe(userID, status string) error {
	var member model.MemberModel
	err := t.db.DbConn.
		Where("group_id = ? AND user_id = ?", t.vars["group_id"], userID).
		First(&member).Error
	if err != nil {
		return err
	}
	if member.SubscriptionStatus != status {
		return fmt.Errorf("expected subscription %s, got %s", status, member.SubscriptionStatus)
	}
	return nil
}

func (t *testContext) theResponseShouldNotContainTheInviteCode() error {
	code := t.vars["invite_code"]
	if code == "" {
		return fmt.Errorf("no invite code captured")
	}
	if strings.Contains(string(t.response.body), code) {
		return fmt.Errorf("response leaks the invite code: %s", string(t.response.body))
	}
	return nil
}

// emailsShouldBeSentTo drives the email worker until the provider saw the expected messages.
func (t *testContext) emailsShouldBeSentTo(count int, address string) error {
	return eventually(func() error {
		t.injector.EmailWorker.ProcessNow(context.Background())

		sent := 0
		for _, request := range t.emailAPI.Requests(http.MethodPost, "/emails") {
			to, _ := request["to"].([]any)
			if len(to) > 0 && to[0] == address {
				sent++
			}
		}
		if sent != count {
			return fmt.Errorf("expected %d emails to %s, got %d", count, address, sent)
		}
		return nil
	})
}

func (t *testContext) anEventShouldBePublished(eventType string) error {
	deadline := time.Now().Add(asyncStepBudget)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithDeadline(context.Background(), deadline)
		msg, err := t.events.ReceiveMessage(ctx)
		cancel()
		if err != nil {
			break
		}

		var event entity.Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if string(event.Type) == eventType {
			return nil
		}
	}
	return fmt.Errorf("no %q event published", eventType)
}
