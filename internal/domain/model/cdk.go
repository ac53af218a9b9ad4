package model

import (
	"time"

	"emby-cdk-manager/internal/domain"
)

type CDKStatus string

const (
	CDKStatusUnused  CDKStatus = "unused"
	CDKStatusUsed    CDKStatus = "used"
	CDKStatusExpired CDKStatus = "expired"
)

// CDK is a single-use activation code. Status moves unused->used or unused->expired, never back.
type CDK struct {
	ID              string
	Code            string
	Status          CDKStatus
	BatchID         string
	CreatedAt       time.Time
	CDKValidDays    int // window in which the code itself must be redeemed
	MemberValidDays int // entitlement granted on redemption; 0 = unlimited
	TemplateID      *string
	CreatedBy       *string
	UsedByAccountID *string
	UsedAt          *time.Time

	// read-side joins, filled by List
	UsedByUsername *string
	TemplateName   *string
}

// RedeemBy is the last instant the code may be redeemed.
func (c *CDK) RedeemBy() time.Time {
	return c.CreatedAt.AddDate(0, 0, c.CDKValidDays)
}

// PastWindow reports whether an unused code has outlived its redemption window.
func (c *CDK) PastWindow(now time.Time) bool {
	return now.After(c.RedeemBy())
}

// Check returns nil when the code can be redeemed at now. A code past its window
// yields ErrCodeExpired while its stored status is still unused; the caller owns the
// lazy unused->expired write.
func (c *CDK) Check(now time.Time) error {
	switch c.Status {
	case CDKStatusUsed:
		return domain.ErrCodeAlreadyUsed
	case CDKStatusExpired:
		return domain.ErrCodeExpired
	case CDKStatusUnused:
		if c.PastWindow(now) {
			return domain.ErrCodeExpired
		}
		return nil
	default:
		return domain.ErrInvalidArgument
	}
}

func (c *CDK) HasTemplate() bool { return c.TemplateID != nil && *c.TemplateID != "" }
