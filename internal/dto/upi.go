package dto

// UPIVerification is the gateway's answer for one QR/OTP pair.
type UPIVerification struct {
	Approved  bool
	Reference string
}
