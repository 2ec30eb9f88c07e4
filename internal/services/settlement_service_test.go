package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardguard/backend/internal/config"
	"github.com/cardguard/backend/internal/models"
)

func approvedTransaction(t *testing.T) models.Transaction {
	t.Helper()
	return models.Transaction{
		ID:               7,
		TransactionID:    "0d06ba9a-3d7d-4f6a-9f3a-0a4c8f4a2b11",
		CardID:           1,
		Amount:           decimal.RequireFromString("50.00"),
		Merchant:         "Acme Grocers",
		MerchantCategory: "food",
		Approved:         true,
		CreatedAt:        time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func settlementCard() models.Card {
	return models.Card{
		ID:             1,
		CardNumber:     "1111111111111111",
		CardholderName: "Alice Smith",
	}
}

func TestSettlementService_BuildPacs008(t *testing.T) {
	service := NewSettlementService(nil, config.LoadSettlementConfig())

	doc, err := service.BuildPacs008(approvedTransaction(t), settlementCard())
	require.NoError(t, err)

	assert.NotEmpty(t, doc.GrpHdr.MsgId)
	assert.Equal(t, "1", string(doc.GrpHdr.NbOfTxs))

	require.Len(t, doc.CdtTrfTxInf, 1)
	transfer := doc.CdtTrfTxInf[0]
	assert.Equal(t, "0d06ba9a-3d7d-4f6a-9f3a-0a4c8f4a2b11", string(transfer.PmtId.EndToEndId))
	assert.Equal(t, float64(50), transfer.IntrBkSttlmAmt.Value)
	assert.Equal(t, "USD", string(transfer.IntrBkSttlmAmt.Ccy))
	assert.Equal(t, common.Max140Text("Alice Smith"), *transfer.Dbtr.Nm)
	assert.Equal(t, common.Max140Text("Acme Grocers"), *transfer.Cdtr.Nm)
}

func TestSettlementService_BuildPacs008_RejectsDeclined(t *testing.T) {
	service := NewSettlementService(nil, config.LoadSettlementConfig())

	txn := approvedTransaction(t)
	txn.Approved = false

	_, err := service.BuildPacs008(txn, settlementCard())
	assert.Error(t, err)
}

func TestSettlementService_ConvertToXML(t *testing.T) {
	service := NewSettlementService(nil, config.LoadSettlementConfig())

	doc, err := service.BuildPacs008(approvedTransaction(t), settlementCard())
	require.NoError(t, err)

	payload, err := service.ConvertToXML(doc)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "<?xml"))
	assert.Contains(t, payload, "Alice Smith")
	assert.Contains(t, payload, "Acme Grocers")
}

func TestSettlementService_Enqueue(t *testing.T) {
	t.Run("pushes the message onto the queue", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		service := NewSettlementService(redisClient, config.LoadSettlementConfig())

		mock.Regexp().ExpectRPush("settlement_queue", `<\?xml`).SetVal(1)

		err := service.Enqueue(context.Background(), approvedTransaction(t), settlementCard())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op without a redis client", func(t *testing.T) {
		service := NewSettlementService(nil, config.LoadSettlementConfig())

		err := service.Enqueue(context.Background(), approvedTransaction(t), settlementCard())
		assert.NoError(t, err)
	})
}
