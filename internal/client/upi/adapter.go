package upiclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

// DemoOTP is the only one-time password the simulated gateway approves.
const DemoOTP = "123456"

const qrScheme = "upi://pay?"

// Adapter simulates a UPI gateway: it waits for delay and then approves
// the demo OTP, whatever the payment link.
type Adapter struct {
	delay time.Duration
}

func NewAdapter(delay time.Duration) *Adapter {
	return &Adapter{delay: delay}
}

func (a *Adapter) Verify(ctx context.Context, qrCode, otp string) (dto.UPIVerification, error) {
	log := logger.FromContext(ctx)
	if values, err := ParseQRCode(qrCode); err != nil {
		log.Warn("verifying unrecognised payment link", "error", err)
	} else {
		log.Debug("verifying payment", "payee", values.Get("pn"), "amount", values.Get("am"))
	}

	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return dto.UPIVerification{}, ctx.Err()
	case <-timer.C:
	}

	if otp != DemoOTP {
		return dto.UPIVerification{Approved: false}, nil
	}
	return dto.UPIVerification{Approved: true, Reference: uuid.NewString()}, nil
}

// ParseQRCode returns the query parameters of a UPI payment link.
func ParseQRCode(qrCode string) (url.Values, error) {
	if !strings.HasPrefix(strings.ToLower(qrCode), qrScheme) {
		return nil, errs.NewValidationError("invalid UPI payment link")
	}
	values, err := url.ParseQuery(qrCode[len(qrScheme):])
	if err != nil {
		return nil, errs.NewValidationError(fmt.Sprintf("invalid UPI payment link: %v", err))
	}
	if values.Get("pn") == "" || values.Get("am") == "" {
		return nil, errs.NewValidationError("UPI payment link is missing payee or amount")
	}
	return values, nil
}
