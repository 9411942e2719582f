package orders

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"kirana/utils"
)

var invoiceSecret = []byte(invoiceSecretFromEnv())

func invoiceSecretFromEnv() string {
	if v := os.Getenv("INVOICE_SECRET"); v != "" {
		return v
	}
	return "your-very-secret-key"
}

// invoiceQRPayload returns orderId|createdAtUnix|signature so a scanned
// invoice can be checked against the ledger.
func invoiceQRPayload(orderID string, createdAtUnix int64) string {
	data := fmt.Sprintf("%s|%d", orderID, createdAtUnix)
	h := hmac.New(sha256.New, invoiceSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// PrintInvoice renders the order as a PDF with a signed QR code.
func (h *Handler) PrintInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, err := h.Ledger.Get(r.Context(), ps.ByName("orderid"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(invoiceQRPayload(o.OrderID, o.CreatedAt.Unix()), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Order ID: %s", o.OrderID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", o.UserName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Address: %s, %s %s", o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.Pincode))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Payment: %s    Status: %s", o.PaymentMethod, o.Status))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Placed: %s", o.CreatedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, "Items")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for _, item := range o.Items {
		pdf.Cell(0, 8, fmt.Sprintf("%s  x%d  @ %.2f  =  %.2f", item.Name, item.Qty, item.Price, item.Price*float64(item.Qty)))
		pdf.Ln(6)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total: %.2f", o.TotalAmount))

	imageOpts := gofpdf.ImageOptions{
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+o.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
