package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"

	"github.com/cardguard/backend/internal/config"
	"github.com/cardguard/backend/internal/models"
)

// SettlementService exports approved transactions as ISO 20022 pacs.008
// messages on a Redis queue. Declined attempts move no money and are never
// exported.
type SettlementService struct {
	redis *redis.Client
	cfg   *config.SettlementConfig
}

func NewSettlementService(redisClient *redis.Client, cfg *config.SettlementConfig) *SettlementService {
	return &SettlementService{
		redis: redisClient,
		cfg:   cfg,
	}
}

// Enqueue converts the transaction to pacs.008 XML and pushes it onto the
// settlement queue. With no Redis client configured it is a no-op.
func (ss *SettlementService) Enqueue(ctx context.Context, txn models.Transaction, card models.Card) error {
	if ss.redis == nil {
		return nil
	}

	doc, err := ss.BuildPacs008(txn, card)
	if err != nil {
		return err
	}

	payload, err := ss.ConvertToXML(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, ss.cfg.EnqueueTimeout)
	defer cancel()

	return ss.redis.RPush(ctx, ss.cfg.QueueKey, payload).Err()
}

// BuildPacs008 creates a pacs.008 FIToFICustomerCreditTransfer message for an
// approved transaction: debtor is the cardholder, creditor the merchant.
func (ss *SettlementService) BuildPacs008(txn models.Transaction, card models.Card) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if !txn.Approved {
		return nil, fmt.Errorf("transaction %s is not approved", txn.TransactionID)
	}

	msgID := uuid.New().String()
	settlementDate := time.Now()
	amount := txn.Amount.InexactFloat64()

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgID),
			CreDtTm: common.ISODateTime(time.Now()),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(ss.cfg.Currency),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG", // Clearing
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(txn.TransactionID)}[0],
					EndToEndId: common.Max35Text(txn.TransactionID),
					TxId:       &[]common.Max35Text{common.Max35Text(txn.TransactionID)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(ss.cfg.Currency),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(ss.cfg.SourceBIC)}[0],
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(card.CardholderName)}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						Nm: &[]common.Max140Text{common.Max140Text(txn.Merchant)}[0],
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(txn.Merchant)}[0],
				},
			},
		},
	}

	return doc, nil
}

// ConvertToXML converts an ISO 20022 document to an XML string
func (ss *SettlementService) ConvertToXML(doc interface{}) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}
