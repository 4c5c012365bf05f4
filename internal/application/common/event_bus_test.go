package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/test/helpers"
)

func TestEventBus(t *testing.T) {
	t.Run("delivers to subscribers by event name", func(t *testing.T) {
		bus := common.NewEventBus()
		activated := bus.Subscribe(campaign.WarPlanActivated{}.EventName(), 1)
		finalized := bus.Subscribe(campaign.CounterFinalized{}.EventName(), 1)

		bus.Publish(context.Background(), campaign.WarPlanActivated{CampaignID: "plan-1", OccurredAt: helpers.BaseTime})

		select {
		case e := <-activated:
			evt, ok := e.(campaign.WarPlanActivated)
			require.True(t, ok)
			assert.Equal(t, "plan-1", evt.CampaignID)
		default:
			t.Fatal("expected an activated event")
		}

		select {
		case <-finalized:
			t.Fatal("finalized subscriber must not receive activation events")
		default:
		}
	})

	t.Run("full subscriber drops instead of blocking", func(t *testing.T) {
		bus := common.NewEventBus()
		ch := bus.Subscribe(campaign.AssignmentsPublished{}.EventName(), 1)

		// Second publish must return even though nobody drains.
		bus.Publish(context.Background(), campaign.AssignmentsPublished{CampaignID: "plan-1"})
		bus.Publish(context.Background(), campaign.AssignmentsPublished{CampaignID: "plan-2"})

		assert.Len(t, ch, 1)
	})
}
