// ABOUTME: Coupon code extraction from offer free text
// ABOUTME: Matches the label variants used by the feed, with a fixed placeholder fallback
package canonical

import (
	"regexp"

	"github.com/harperreed/chollosync/models"
)

var couponRe = regexp.MustCompile(`(?i)(?:cod\.?\s*promo|cup[oó]n|c[oó]digo)\s*[:\-]?\s*([A-Za-z0-9\-]{3,})`)

// ExtractCoupon pulls a discount code out of free text. When no label
// variant matches, the fixed placeholder is returned.
func ExtractCoupon(text string) string {
	if m := couponRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return models.CouponNone
}
