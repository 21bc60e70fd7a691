// Package background draws the random transfer graph the patterns hide in.
package background

import (
	"fmt"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/window"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/money"
)

// MaxReceiverRetries bounds how often a receiver equal to the sender is redrawn.
const MaxReceiverRetries = 100

const (
	defaultCount     = 1000
	defaultBandMin   = 100
	defaultBandMax   = 50_000
	txnIDHexLen      = 12
	minimumPopulated = 2
)

// Config shapes the background graph.
type Config struct {
	Count    int
	Band     money.Band
	Currency string
}

// DefaultConfig returns 1000 transfers between 100 and 50,000.
func DefaultConfig(currency string) Config {
	return Config{
		Count:    defaultCount,
		Band:     money.NewBand(defaultBandMin, defaultBandMax),
		Currency: currency,
	}
}

func (c Config) Validate() error {
	if c.Count < 0 {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("background count must not be negative, got %d", c.Count))
	}
	if c.Currency == "" {
		return dErrors.New(dErrors.CodeInvalidConfig, "currency is required")
	}
	if err := c.Band.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidConfig, "background band")
	}
	return nil
}

// Generate returns exactly cfg.Count user-to-user transfers inside w.
func Generate(users []models.User, cfg Config, w window.Window, rng *random.Source) ([]models.Transaction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(users) < minimumPopulated {
		return nil, dErrors.New(dErrors.CodeInsufficientPopulation,
			fmt.Sprintf("background transfers need at least %d users, got %d", minimumPopulated, len(users)))
	}

	ids := rng.Minter()
	txns := make([]models.Transaction, 0, cfg.Count)
	for range cfg.Count {
		sender, receiver, err := distinctPair(users, rng)
		if err != nil {
			return nil, err
		}
		txns = append(txns, models.Transaction{
			ID:         id.TxnID(ids.Mint(models.TxnPrefixBackground, txnIDHexLen)),
			SenderID:   id.UserParty(sender.ID),
			ReceiverID: id.UserParty(receiver.ID),
			Amount:     cfg.Band.At(rng.Float64()),
			Currency:   cfg.Currency,
			Timestamp:  w.Start.Add(rng.Offset(w.Duration())),
			Type:       models.TxnTransfer,
		})
	}
	return txns, nil
}

// distinctPair draws sender and receiver independently, redrawing the receiver
// while it matches the sender. Users are compared by id.
func distinctPair(users []models.User, rng *random.Source) (models.User, models.User, error) {
	sender := users[rng.IntN(len(users))]
	receiver := users[rng.IntN(len(users))]
	for retries := 0; receiver.ID == sender.ID; retries++ {
		if retries == MaxReceiverRetries {
			return models.User{}, models.User{}, dErrors.New(dErrors.CodeInsufficientPopulation,
				fmt.Sprintf("no receiver distinct from %s after %d retries", sender.ID, MaxReceiverRetries))
		}
		receiver = users[rng.IntN(len(users))]
	}
	return sender, receiver, nil
}
