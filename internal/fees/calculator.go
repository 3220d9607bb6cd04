package fees

import (
	"errors"

	"github.com/shopspring/decimal"

	"tixpay/internal/domain"
)

var (
	// ErrInvalidPaymentMethod is returned when the payment method is not recognized.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrUnsupportedChannel is returned when the channel has no configured fee rate.
	ErrUnsupportedChannel = errors.New("unsupported payment channel")
)

// VAT charged on the gateway's transaction fee.
var vatRate = decimal.NewFromFloat(0.12)

var eWalletRates = map[domain.PaymentChannel]decimal.Decimal{
	domain.ChannelGCash:   decimal.NewFromFloat(0.023),
	domain.ChannelPayMaya: decimal.NewFromFloat(0.018),
}

var (
	directDebitRate    = decimal.NewFromFloat(0.01)
	directDebitFlatFee = decimal.NewFromInt(15)

	// Below this net price the 1% fee undercuts the gateway's minimum fee of 15,
	// so the flat fee applies instead. 1483.20 = 1500 - 15 - 15*0.12, the net
	// at which both branches charge the same.
	directDebitFlatCeiling = decimal.NewFromFloat(1483.20)
)

// QuoteParams are the inputs for a fee quote.
type QuoteParams struct {
	TicketPrice decimal.Decimal
	Method      domain.PaymentMethod
	Channel     domain.PaymentChannel

	// PlatformPct is an optional platform cut, expressed as a fraction of the
	// ticket price (0.05 = 5%). Zero means no platform fee.
	PlatformPct decimal.Decimal
}

// Quote computes the gross price a payer must be charged so that, after the
// gateway deducts its fee and the VAT on that fee, the seller nets the ticket
// price plus the platform cut.
//
// The fee is a function of the unknown gross price P, and the equation
//
//	P - fee(P) - fee(P)*vat = net
//
// is linear in P in every branch, so it is solved in closed form rather than
// numerically. For a percentage fee rate r:
//
//	P = net / (1 - r*(1 + vat))
//
// and for a flat fee f:
//
//	P = net + f*(1 + vat)
func Quote(params QuoteParams) (*domain.FeeQuote, error) {
	platformFee := params.PlatformPct.Mul(params.TicketPrice)
	net := params.TicketPrice.Add(platformFee)

	one := decimal.NewFromInt(1)
	vatFactor := one.Add(vatRate)

	var gross decimal.Decimal

	switch params.Method {
	case domain.MethodEWallet:
		rate, ok := eWalletRates[params.Channel]
		if !ok {
			return nil, ErrUnsupportedChannel
		}
		gross = net.Div(one.Sub(rate.Mul(vatFactor)))

	case domain.MethodDirectDebit:
		if net.GreaterThan(directDebitFlatCeiling) {
			gross = net.Div(one.Sub(directDebitRate.Mul(vatFactor)))
		} else {
			gross = net.Add(directDebitFlatFee.Mul(vatFactor))
		}

	default:
		return nil, ErrInvalidPaymentMethod
	}

	gross = gross.Round(2)

	return &domain.FeeQuote{
		TicketPrice: params.TicketPrice.Round(2),
		GrossPrice:  gross,
		Fee:         gross.Sub(net).Round(2),
		PlatformFee: platformFee.Round(2),
	}, nil
}
