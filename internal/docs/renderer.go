package docs

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer renders the document templates with fpdf. The creation date
// embedded in the PDF comes from the render context, never the wall clock,
// so output is byte-stable for a given case.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(template string, rc RenderContext) ([]byte, error) {
	var title string
	var body []string

	switch template {
	case "demand_notice":
		title, body = demandNotice(rc)
	case "affidavit":
		title, body = affidavit(rc)
	case "summons":
		title, body = summons(rc)
	case "scra_form":
		title, body = scraForm(rc)
	default:
		return nil, fmt.Errorf("unknown template %q", template)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(rc.GeneratedAt)
	pdf.SetModificationDate(rc.GeneratedAt)
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, tr(rc.Court.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(rc.Court.Address), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, tr(rc.Court.Phone), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, paragraph := range body {
		pdf.MultiCell(0, 6, tr(paragraph), "", "L", false)
		pdf.Ln(2)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Case: %s", rc.Case.CaseID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generated: %s", rc.GeneratedAt.Format("January 2, 2006"))), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func demandNotice(rc RenderContext) (string, []string) {
	c := rc.Case
	title := fmt.Sprintf("%d-DAY DEMAND FOR POSSESSION", rc.NoticePeriodDays)
	return title, []string{
		fmt.Sprintf("TO: %s, and all other occupants of %s.", c.TenantName, c.PropertyAddress),
		fmt.Sprintf("You are hereby notified that pursuant to %s, demand is made upon you for possession of the above premises for the following reason: %s.", rc.LegalCode, c.Reason),
		fmt.Sprintf("Rent and other amounts now due and owing total $%.2f. You have %d days from service of this notice to deliver possession of the premises or cure the default.", c.AmountOwed, rc.NoticePeriodDays),
		fmt.Sprintf("Landlord: %s, %s.", c.LandlordName, c.LandlordAddress),
	}
}

func affidavit(rc RenderContext) (string, []string) {
	c := rc.Case
	return "DISPOSSESSORY AFFIDAVIT", []string{
		fmt.Sprintf("Personally appeared %s (landlord), who on oath says that %s (tenant) is in possession of the premises at %s, %s %s.", c.LandlordName, c.TenantName, c.PropertyAddress, c.PropertyCity, c.PropertyZip),
		fmt.Sprintf("The tenant fails to pay the rent which is now past due, or otherwise holds the premises over; the ground for this proceeding is: %s. The amount owed is $%.2f with monthly rent of $%.2f.", c.Reason, c.AmountOwed, c.RentAmount),
		fmt.Sprintf("Demand for possession was made on %s (%s) and the tenant has failed and refused to deliver possession.", c.NoticeDate, c.NoticeDetails),
		fmt.Sprintf("Affiant demands possession of the premises, past due rent, and such other relief as the court deems just, before the %s.", rc.Court.Name),
	}
}

func summons(rc RenderContext) (string, []string) {
	c := rc.Case
	return "SUMMONS", []string{
		fmt.Sprintf("TO: %s, tenant in possession of %s.", c.TenantName, c.PropertyAddress),
		fmt.Sprintf("You are hereby summoned and required to answer, orally or in writing, the attached dispossessory affidavit of %s before the %s within seven (7) days from the date of actual service.", c.LandlordName, rc.Court.Name),
		"If you fail to answer, a writ of possession and a judgment for all amounts claimed shall issue against you.",
		fmt.Sprintf("Presiding: %s.", rc.Court.ChiefMagistrate),
	}
}

func scraForm(rc RenderContext) (string, []string) {
	c := rc.Case
	status := "IS NOT"
	if c.MilitaryCheck {
		status = "MAY BE"
	}
	return "SERVICEMEMBERS CIVIL RELIEF ACT VERIFICATION", []string{
		fmt.Sprintf("In the matter of %s v. %s regarding the premises at %s.", c.LandlordName, c.TenantName, c.PropertyAddress),
		fmt.Sprintf("The undersigned states, upon investigation, that the tenant %s in the military service of the United States as defined by the Servicemembers Civil Relief Act, 50 U.S.C. App. 501 et seq.", status),
		"This verification is submitted in support of the attached dispossessory proceeding and is made subject to the penalties of perjury.",
	}
}
