package usecase

import (
	"strings"
)

// builtinKeywords is the financial vocabulary a receipt is expected to
// contain. Spanish terms first, then English. Matching is substring based,
// so short entries such as "ACH" deliberately match inside longer words.
var builtinKeywords = []string{
	"BANCO", "PAYPAL", "TRANSFERENCIA", "DEPÓSITO",
	"OXXO", "SANTANDER", "BANAMEX", "CITIBANAMEX",
	"CAJERO", "COMPROBANTE", "RECIBO", "REFERENCIA",
	"ABONO", "PAGO", "OPERACIÓN EXITOSA", "IMPORTE TRANSFERIDO",
	"TRANSACCIÓN", "REMITENTE", "DESTINATARIO", "MONTO",
	"CANTIDAD", "CONFIRMACIÓN", "CUENTA", "RETIRO",
	"ESTADO DE CUENTA", "SALDO", "CRÉDITO", "DÉBITO",
	"TRANSFERENCIA BANCARIA", "GIRO", "REMESA", "NÚMERO DE OPERACIÓN",
	"PAGO PROCESADO", "APROBADO", "AUTORIZADO", "NÚMERO DE CONFIRMACIÓN",
	"TRANSFERENCIA ELECTRÓNICA", "BENEFICIARIO", "PAGADO", "COMPLETADO",
	"BITCOIN", "CRIPTOMONEDA", "BILLETERA", "MONEDERO DIGITAL",
	"INTERCAMBIO", "BBVA", "BANCOMER", "HSBC",
	"BANORTE", "SCOTIABANK", "INBURSA", "AFIRME",
	"BANJERCITO", "BANCOPPEL", "BANCO AZTECA", "SPEI",
	"CLABE", "TARJETA", "EFECTIVO", "MOVIMIENTO",
	"TERMINAL", "PUNTO DE VENTA", "TPV", "COMISIÓN",
	"CARGO", "FECHA VALOR", "CONCEPTO",
	"FOLIO", "CLAVE DE RASTREO", "ENVÍO", "RECEPCIÓN",

	"TRANSACTION", "SENDER", "PAYMENT", "RECEIPT",
	"TRANSFER", "BANK", "AMOUNT", "SUCCESSFUL",
	"CONFIRMATION", "REFERENCE", "ACCOUNT", "DEPOSIT",
	"WITHDRAWAL", "STATEMENT", "BALANCE", "CREDIT",
	"DEBIT", "WIRE TRANSFER", "MONEY ORDER", "REMITTANCE",
	"TRANSACTION ID", "PAYMENT PROCESSED", "APPROVED", "AUTHORIZED",
	"CONFIRMATION NUMBER", "ELECTRONIC TRANSFER", "ACH", "SWIFT",
	"ROUTING NUMBER", "BENEFICIARY", "PAID", "COMPLETED",
	"CRYPTO", "BLOCKCHAIN", "WALLET",
	"EXCHANGE", "BINANCE", "COINBASE", "TETHER",
}

// OCR engines routinely lose diacritics, so both sides are folded.
var accentFolder = strings.NewReplacer(
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

func foldKeyword(s string) string {
	return accentFolder.Replace(strings.ToUpper(strings.TrimSpace(s)))
}

// KeywordValidator decides whether extracted text looks like a payment
// receipt: any one keyword is enough.
type KeywordValidator struct {
	keywords []string // folded, deduplicated
}

// NewKeywordValidator returns a validator over the built-in dictionary plus
// extra terms from configuration.
func NewKeywordValidator(extra ...string) *KeywordValidator {
	seen := make(map[string]struct{}, len(builtinKeywords)+len(extra))
	v := &KeywordValidator{}
	for _, src := range [][]string{builtinKeywords, extra} {
		for _, k := range src {
			f := foldKeyword(k)
			if f == "" {
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			v.keywords = append(v.keywords, f)
		}
	}
	return v
}

// Validate reports whether text contains any keyword and which ones matched.
func (v *KeywordValidator) Validate(text string) (bool, []string) {
	folded := foldKeyword(text)
	if folded == "" {
		return false, nil
	}
	var matched []string
	for _, k := range v.keywords {
		if strings.Contains(folded, k) {
			matched = append(matched, k)
		}
	}
	return len(matched) > 0, matched
}

func (v *KeywordValidator) Len() int { return len(v.keywords) }
