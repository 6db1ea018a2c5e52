package main

import (
	"io"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"

	"networth/internal/domain/exposure"
	"networth/internal/domain/ingestion"
	"networth/internal/domain/portfolio"
	"networth/internal/domain/snapshot"
)

type snapshotRow struct {
	UserID   string
	Snapshot *snapshot.Snapshot
}

type refreshRow struct {
	UserID string
	Result *ingestion.RefreshResult
}

func usd(v float64) string {
	return money.NewFromFloat(v, money.USD).Display()
}

func pctString(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func renderSnapshots(w io.Writer, rows []snapshotRow) {
	table := newTable(w, "User", "Taken At", "Net Worth", "Crypto", "Tradfi", "Real Estate", "Liabilities")
	for _, r := range rows {
		s := r.Snapshot
		table.Append([]string{
			r.UserID,
			s.TakenAt.UTC().Format(time.RFC3339),
			usd(s.TotalNetWorthUSD),
			usd(s.TotalCryptoUSD),
			usd(s.TotalTradfiUSD),
			usd(s.TotalRealEstateUSD),
			usd(s.TotalLiabilitiesUSD),
		})
	}
	table.Render()
}

func renderRefreshResults(w io.Writer, rows []refreshRow) {
	table := newTable(w, "User", "Wallets", "Synced", "Failed", "Skipped", "Holdings")
	for _, r := range rows {
		res := r.Result
		table.Append([]string{
			r.UserID,
			strconv.Itoa(res.WalletsTotal),
			strconv.Itoa(res.Synced),
			strconv.Itoa(res.Failed),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.HoldingsWritten),
		})
	}
	table.Render()
}

func renderNetWorth(w io.Writer, s portfolio.NetWorthSummary) {
	table := newTable(w, "Net Worth", "Amount")
	table.AppendBulk([][]string{
		{"Crypto", usd(s.TotalCryptoUSD)},
		{"Tradfi (incl. real estate)", usd(s.TotalTradfiUSD)},
		{"Real estate", usd(s.TotalRealEstateUSD)},
		{"Total assets", usd(s.TotalAssetsUSD)},
		{"Liabilities", usd(s.TotalLiabilitiesUSD)},
		{"Net worth", usd(s.TotalNetWorthUSD)},
	})
	table.Render()
}

func renderExposure(w io.Writer, s portfolio.ExposureSummary) {
	table := newTable(w, "Bucket", "Exposure", "% of Holdings")
	for _, b := range s.ExposuresByBucket {
		table.Append([]string{string(b.Bucket), usd(b.ExposureUSD), pctString(b.PctOfNetWorth)})
	}
	table.SetFooter([]string{"Total", usd(s.TotalNetWorthUSD), ""})
	table.Render()

	cb := s.CryptoBreakdown
	crypto := newTable(w, "Crypto Subtype", "Exposure")
	crypto.AppendBulk([][]string{
		{exposure.SubtypeSpotOnChain, usd(cb.SpotOnChainUSD)},
		{exposure.SubtypeSpotCustodial, usd(cb.SpotCustodialUSD)},
		{exposure.SubtypeStablecoin, usd(cb.StablecoinUSD)},
		{exposure.SubtypeCryptoETF, usd(cb.CryptoETFUSD)},
		{exposure.SubtypeCryptoEquity, usd(cb.CryptoEquityUSD)},
		{"other", usd(cb.OtherCryptoUSD)},
	})
	crypto.SetFooter([]string{"Total", usd(cb.TotalCryptoExposureUSD)})
	crypto.Render()
}

func renderClassification(w io.Writer, version string, c exposure.Classification) {
	rule := c.Rule
	if rule == "" {
		rule = "-"
	}
	underlying := c.CryptoUnderlying
	if underlying == "" {
		underlying = "-"
	}

	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"taxonomy", version},
		{"bucket", string(c.Bucket)},
		{"subtype", c.Subtype},
		{"crypto exposure", strconv.FormatBool(c.IsCryptoExposure)},
		{"underlying", underlying},
		{"rule", rule},
		{"exposure", usd(c.ExposureUSD)},
	})
	table.Render()
}
