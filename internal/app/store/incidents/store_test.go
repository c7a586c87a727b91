package incidents_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/freightdesk/internal/app/store/incidents"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateResolveCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := incidents.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, models.Incident{
		Category:    "damage",
		Severity:    models.SeverityHigh,
		Description: "<p>Crushed box</p>",
		ReportedBy:  "Dana",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(in.Reference, "INC-"), in.Reference)
	assert.Equal(t, models.IncidentOpen, in.Status)

	open, err := store.Count(ctx, models.IncidentOpen)
	require.NoError(t, err)
	assert.EqualValues(t, 1, open)

	require.NoError(t, store.Resolve(ctx, in.ID))
	open, err = store.Count(ctx, models.IncidentOpen)
	require.NoError(t, err)
	assert.Zero(t, open)

	assert.ErrorIs(t, store.Resolve(ctx, primitive.NewObjectID()), incidents.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := incidents.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateIncident(ctx, "INC-20260102-B", models.SeverityLow)
	fx.CreateIncident(ctx, "INC-20260101-A", models.SeverityMedium)
	fx.CreateIncident(ctx, "INC-20260103-C", models.SeverityHigh)

	page, err := store.List(ctx, "", paging.Query{Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "INC-20260101-A", page.Rows[0].Reference)
	assert.True(t, page.HasNext)

	next, err := store.List(ctx, "", paging.Query{Size: 2, After: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Rows, 1)
	assert.Equal(t, "INC-20260103-C", next.Rows[0].Reference)
}
