package triage

import "intake-triage/internal/domain"

// cookCountyPrefixes cover Chicago and the inner suburbs; cookCountyZips
// lists the remaining suburban Cook County codes.
var cookCountyPrefixes = []string{"606", "607", "608"}

var cookCountyZips = map[string]bool{
	"60004": true, "60005": true, "60007": true, "60008": true, "60016": true,
	"60018": true, "60025": true, "60026": true, "60029": true, "60043": true,
	"60053": true, "60056": true, "60062": true, "60067": true, "60068": true,
	"60070": true, "60074": true, "60076": true, "60077": true, "60090": true,
	"60104": true, "60130": true, "60131": true, "60141": true, "60153": true,
	"60154": true, "60155": true, "60160": true, "60162": true, "60163": true,
	"60164": true, "60165": true, "60171": true, "60176": true, "60192": true,
	"60193": true, "60194": true, "60195": true, "60201": true, "60202": true,
	"60203": true, "60301": true, "60302": true, "60304": true, "60305": true,
	"60402": true, "60406": true, "60409": true, "60411": true, "60415": true,
	"60419": true, "60422": true, "60425": true, "60426": true, "60428": true,
	"60429": true, "60430": true, "60438": true, "60439": true, "60443": true,
	"60445": true, "60452": true, "60453": true, "60455": true, "60456": true,
	"60457": true, "60458": true, "60459": true, "60461": true, "60462": true,
	"60463": true, "60464": true, "60465": true, "60466": true, "60467": true,
	"60469": true, "60471": true, "60472": true, "60473": true, "60475": true,
	"60476": true, "60477": true, "60478": true, "60480": true, "60482": true,
	"60487": true, "60501": true, "60513": true, "60525": true, "60526": true,
	"60534": true, "60546": true, "60558": true,
}

// InCookCounty reports whether a validated ZIP code is in Cook County.
func InCookCounty(zip string) bool {
	if !ValidZip(zip) {
		return false
	}
	for _, p := range cookCountyPrefixes {
		if zip[:3] == p {
			return true
		}
	}
	return cookCountyZips[zip]
}

// referrals returns the catalog entries for a completed run. Income-gated
// providers are dropped for users who are not income eligible and the
// flagged nonprofit is marked; catalog order is kept.
func (m *Machine) referrals(r Result) []domain.ReferralRecord {
	records := m.catalog.Lookup(r.Topic, r.Level)
	out := make([]domain.ReferralRecord, 0, len(records))
	for _, rec := range records {
		if !r.IncomeEligible && m.catalog.IncomeGated(rec.Name) {
			continue
		}
		if m.catalog.IsFlaggedProvider(rec.Name) {
			rec.IsNFP = true
		}
		out = append(out, rec)
	}
	return out
}

// topResource picks the single referral offered by "connect": the flagged
// nonprofit for Cook County residents when it is available, otherwise the
// first referral.
func (m *Machine) topResource(r Result) (domain.ReferralRecord, bool) {
	records := m.referrals(r)
	if len(records) == 0 {
		return domain.ReferralRecord{}, false
	}
	if InCookCounty(r.ZipCode) {
		for _, rec := range records {
			if rec.IsNFP && m.catalog.IsFlaggedProvider(rec.Name) {
				return rec, true
			}
		}
	}
	return records[0], true
}
