package dataset_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"amlgen/internal/dataset"
	"amlgen/internal/dataset/mocks"
	"amlgen/internal/generator/background"
	"amlgen/internal/generator/models"
	"amlgen/internal/generator/population"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/typology"
	"amlgen/internal/generator/window"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

//go:generate mockgen -source=writer.go -destination=mocks/mocks.go -package=mocks Sink

var testWindow = window.New(time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC), 90)

// fixture builds a small verified dataset: 20 users, 50 transfers, one
// structuring scenario and one mule ring.
func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	rng := random.New(2024)
	cfg := population.DefaultConfig()
	cfg.Count = 20
	users, err := population.Synthesize(cfg, models.DefaultProfiles(), testWindow.Start, rng.Stream(0))
	require.NoError(t, err)

	bg := background.DefaultConfig("SEK")
	bg.Count = 50
	txns, err := background.Generate(users, bg, testWindow, rng.Stream(1))
	require.NoError(t, err)

	ds := dataset.New(rng.Seed(), testWindow, "SEK")
	ds.Users = users
	ds.Append(txns, nil)

	schedule := window.DefaultSchedule()
	for i, inj := range []typology.Injector{typology.NewSmurfing(), typology.NewMuleRing()} {
		scope := typology.Scope{Span: testWindow.Resolve(schedule[inj.Name()]), Currency: "SEK"}
		out, err := inj.Inject(users, scope, rng.Stream(uint64(2+i)))
		require.NoError(t, err)
		ds.Append(out.Transactions, out.Alerts)
	}
	require.NoError(t, ds.Verify())
	return ds
}

func clone(ds *dataset.Dataset) *dataset.Dataset {
	c := *ds
	c.Users = append([]models.User(nil), ds.Users...)
	c.Transactions = append([]models.Transaction(nil), ds.Transactions...)
	c.Alerts = append([]models.Alert(nil), ds.Alerts...)
	return &c
}

func TestSummary(t *testing.T) {
	ds := fixture(t)
	s := ds.Summary()

	assert.Equal(t, 20, s.Users)
	assert.Equal(t, 50+11+10, s.Transactions)
	assert.Equal(t, 6, s.Alerts)
	assert.Equal(t, 10, s.TransactionsByType[models.TxnDeposit])
	assert.Equal(t, 5, s.TransactionsByType[models.TxnWireIn])
	assert.Equal(t, 1, s.AlertsByTypology[models.TypologyStructuring])
	assert.Equal(t, 5, s.AlertsByTypology[models.TypologyMuleRing])
	assert.Equal(t, 1, s.AlertsBySeverity[models.SeverityHigh])
	assert.Equal(t, slog.KindGroup, s.LogValue().Kind())
}

func TestVerifyDetectsViolations(t *testing.T) {
	base := fixture(t)
	firstUser := base.Users[0].ID

	cases := []struct {
		name    string
		mutate  func(ds *dataset.Dataset)
		message string
	}{
		{
			name:    "duplicate user",
			mutate:  func(ds *dataset.Dataset) { ds.Users = append(ds.Users, ds.Users[0]) },
			message: "duplicate user",
		},
		{
			name:    "duplicate transaction",
			mutate:  func(ds *dataset.Dataset) { ds.Transactions = append(ds.Transactions, ds.Transactions[0]) },
			message: "duplicate transaction",
		},
		{
			name:    "dangling party",
			mutate:  func(ds *dataset.Dataset) { ds.Transactions[0].ReceiverID = id.UserParty(id.NewUserID("FFFFFFFF")) },
			message: "unknown party",
		},
		{
			name: "self transfer",
			mutate: func(ds *dataset.Dataset) {
				ds.Transactions[0].ReceiverID = ds.Transactions[0].SenderID
			},
			message: "to itself",
		},
		{
			name:    "non-positive amount",
			mutate:  func(ds *dataset.Dataset) { ds.Transactions[0].Amount = decimal.Zero },
			message: "not positive",
		},
		{
			name:    "mixed currency",
			mutate:  func(ds *dataset.Dataset) { ds.Transactions[0].Currency = "EUR" },
			message: "currency",
		},
		{
			name:    "outside window",
			mutate:  func(ds *dataset.Dataset) { ds.Transactions[0].Timestamp = testWindow.End },
			message: "outside the window",
		},
		{
			name:    "alert on unknown user",
			mutate:  func(ds *dataset.Dataset) { ds.Alerts[0].UserID = id.NewUserID("FFFFFFFF") },
			message: "unknown user",
		},
		{
			name:    "free-text reason",
			mutate:  func(ds *dataset.Dataset) { ds.Alerts[0].Reason = "looks odd" },
			message: "non-canonical",
		},
		{
			name: "alert before its trigger",
			mutate: func(ds *dataset.Dataset) {
				ds.Alerts[0].CreatedAt = testWindow.Start
			},
			message: "does not follow",
		},
		{
			name: "alert without a scenario",
			mutate: func(ds *dataset.Dataset) {
				ds.Alerts[0].Reason = models.ReasonGeographicRisk
			},
			message: "has no fp_geo_context transaction",
		},
		{
			name:    "risk outside unit range",
			mutate:  func(ds *dataset.Dataset) { ds.Users[0].RiskScore = 1.5 },
			message: string(firstUser),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds := clone(base)
			tc.mutate(ds)
			err := ds.Verify()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestAssembleColumnOrder(t *testing.T) {
	ds := fixture(t)
	export, err := ds.Export()
	require.NoError(t, err)

	assert.Equal(t, "user_id,name,occupation,email,phone,address,annual_income,risk_score,joined_date,is_pep",
		strings.Join(export.Users.Columns, ","))
	assert.Equal(t, "txn_id,sender_id,receiver_id,amount,currency,timestamp,txn_type",
		strings.Join(export.Transactions.Columns, ","))
	assert.Equal(t, "alert_id,user_id,trigger_reason,status,created_at,severity",
		strings.Join(export.Alerts.Columns, ","))

	require.Equal(t, len(ds.Users), export.Users.Len())
	require.Equal(t, len(ds.Transactions), export.Transactions.Len())
	require.Equal(t, len(ds.Alerts), export.Alerts.Len())
	for _, table := range export.Tables() {
		require.Len(t, table.Keys, table.Len())
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Columns))
		}
	}

	u := ds.Users[0]
	row := export.Users.Rows[0]
	assert.Equal(t, u.ID.String(), row[0])
	assert.Equal(t, u.JoinedDate.Format("2006-01-02"), row[8])

	txn := ds.Transactions[0]
	assert.Equal(t, txn.Timestamp.Format(time.RFC3339), export.Transactions.Rows[0][5])
	assert.Equal(t, "TRANSFER", export.Transactions.Rows[0][6])
	sender, _ := txn.SenderID.UserID()
	assert.Equal(t, sender.String(), export.Transactions.Keys[0])

	alert := ds.Alerts[0]
	assert.Equal(t, []string{alert.ID.String(), alert.UserID.String(), string(alert.Reason), "new",
		alert.CreatedAt.Format(time.RFC3339), string(alert.Severity)}, export.Alerts.Rows[0])
}

func TestAssembleFormatsExactAmounts(t *testing.T) {
	u := models.User{ID: id.NewUserID("00000001")}
	txn := models.Transaction{
		ID:         "TX-MULE-OUT-00000001",
		SenderID:   id.UserParty(u.ID),
		ReceiverID: id.ExternalWire,
		Amount:     decimal.RequireFromString("150000.01").Mul(decimal.RequireFromString("0.95")),
		Currency:   "SEK",
		Timestamp:  testWindow.Start,
		Type:       models.TxnTransfer,
	}
	alert := models.Alert{ID: "a", UserID: u.ID}

	export, err := dataset.Assemble([]models.User{u}, []models.Transaction{txn}, []models.Alert{alert})
	require.NoError(t, err)
	assert.Equal(t, "142500.0095", export.Transactions.Rows[0][3])
}

func TestAssembleRejectsEmptyCollections(t *testing.T) {
	ds := fixture(t)
	cases := map[string]func() error{
		"users": func() error {
			_, err := dataset.Assemble(nil, ds.Transactions, ds.Alerts)
			return err
		},
		"transactions": func() error {
			_, err := dataset.Assemble(ds.Users, nil, ds.Alerts)
			return err
		},
		"alerts": func() error {
			_, err := dataset.Assemble(ds.Users, ds.Transactions, []models.Alert{})
			return err
		},
	}
	for name, assemble := range cases {
		t.Run(name, func(t *testing.T) {
			err := assemble()
			assert.True(t, errors.Is(err, dErrors.ErrEmptyDataset))
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestWriterFansOutInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSink(ctrl)
	second := mocks.NewMockSink(ctrl)
	ds := fixture(t)

	first.EXPECT().Name().Return("csv").AnyTimes()
	second.EXPECT().Name().Return("postgres").AnyTimes()
	gomock.InOrder(
		first.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e dataset.Export) error {
			assert.Equal(t, len(ds.Alerts), e.Alerts.Len())
			return nil
		}),
		second.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil),
	)

	w := dataset.NewWriter([]dataset.Sink{first, second}, dataset.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, w.Write(context.Background(), ds))
}

func TestWriterStopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockSink(ctrl)
	never := mocks.NewMockSink(ctrl)

	failing.EXPECT().Name().Return("postgres").AnyTimes()
	failing.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	never.EXPECT().Write(gomock.Any(), gomock.Any()).Times(0)

	w := dataset.NewWriter([]dataset.Sink{failing, never}, dataset.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	err := w.Write(context.Background(), fixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.ErrorContains(t, err, "connection refused")
}

func TestWriterRefusesEmptyDataset(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Write(gomock.Any(), gomock.Any()).Times(0)

	w := dataset.NewWriter([]dataset.Sink{sink})
	err := w.Write(context.Background(), dataset.New(1, testWindow, "SEK"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeEmptyDataset))
}
