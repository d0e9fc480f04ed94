package notify

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type confirmationView struct {
	Name          string
	OrderID       string
	Lines         []lineView
	Total         string
	PaymentMethod string
	URL           string
	Brand         string
	Support       string
}

type lineView struct {
	Title string
	Price string
	URL   string
}

type reminderView struct {
	Name        string
	OrderID     string
	CourseTitle string
	Total       string
	URL         string
	Brand       string
	Support     string
}

const confirmationHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Pembelian Berhasil!</title></head>
<body>
<h2>Hi {{.Name}},</h2>
<p>Terima kasih telah melakukan pembelian di {{.Brand}}. Pembayaran telah kami terima, dan konten yang kamu beli sekarang sudah siap untuk diakses.</p>
<h3>Detail Pembelian</h3>
<p>No. Pesanan: {{.OrderID}}</p>
<ul>
{{range .Lines}}<li>{{.Title}} ({{.Price}}) <a href="{{.URL}}">Akses</a></li>
{{end}}</ul>
<p>Total: {{.Total}}</p>
<p>Metode Pembayaran: {{.PaymentMethod}}</p>
<p>Kamu bisa langsung login menggunakan email akun yang telah terdaftar untuk mengakses konten:</p>
<p><a href="{{.URL}}">Akses Sekarang</a></p>
<p>Jika kamu mengalami kendala, tim kami siap membantu melalui <a href="mailto:{{.Support}}">{{.Support}}</a>.</p>
<p>Selamat belajar!</p>
<p>Salam hangat,<br>Tim {{.Brand}}</p>
</body>
</html>`

const confirmationText = `Hi {{.Name}},

Pembayaran untuk pesanan {{.OrderID}} telah kami terima.
{{range .Lines}}
- {{.Title}} ({{.Price}}): {{.URL}}{{end}}

Total: {{.Total}}
Metode Pembayaran: {{.PaymentMethod}}

Akses sekarang: {{.URL}}

Tim {{.Brand}} ({{.Support}})
`

const reminderHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Transaksi Belum Selesai</title></head>
<body>
<h2>Hi {{.Name}},</h2>
<p>Kami melihat kamu sedang dalam proses pembelian konten di {{.Brand}}, tapi transaksimu belum selesai.</p>
<h3>Rincian Pembelian</h3>
<p>No. Pesanan: {{.OrderID}}</p>
<p>Nama Konten: {{.CourseTitle}}</p>
<p>Harga: {{.Total}}</p>
<p>Untuk melanjutkan pembayaran, login menggunakan email akun terdaftar lalu selesaikan transaksi dari dashboard.</p>
<p><a href="{{.URL}}">Lanjutkan Pembayaran</a></p>
<p>Kalau ada kendala, kami siap bantu di <a href="mailto:{{.Support}}">{{.Support}}</a>.</p>
<p>Salam hangat,<br>Tim {{.Brand}}</p>
</body>
</html>`

const reminderText = `Hi {{.Name}},

Transaksi {{.OrderID}} untuk {{.CourseTitle}} ({{.Total}}) belum selesai.
Lanjutkan pembayaran: {{.URL}}

Tim {{.Brand}} ({{.Support}})
`

var (
	confirmationHTMLTpl = htmltemplate.Must(htmltemplate.New("confirmationHTML").Parse(confirmationHTML))
	confirmationTextTpl = texttemplate.Must(texttemplate.New("confirmationText").Parse(confirmationText))
	reminderHTMLTpl     = htmltemplate.Must(htmltemplate.New("reminderHTML").Parse(reminderHTML))
	reminderTextTpl     = texttemplate.Must(texttemplate.New("reminderText").Parse(reminderText))
)

func renderConfirmation(msg PurchaseConfirmation, brand, support string) (html, text string, err error) {
	view := confirmationView{
		Name:          msg.Name,
		OrderID:       msg.OrderID,
		Total:         Rupiah(msg.Total),
		PaymentMethod: msg.PaymentMethod,
		URL:           msg.URL,
		Brand:         brand,
		Support:       support,
	}
	for _, l := range msg.Lines {
		view.Lines = append(view.Lines, lineView{Title: l.CourseTitle, Price: Rupiah(l.Total), URL: l.URL})
	}

	var hb, tb bytes.Buffer
	if err = confirmationHTMLTpl.Execute(&hb, view); err != nil {
		return "", "", err
	}
	if err = confirmationTextTpl.Execute(&tb, view); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func renderReminder(msg TransactionReminder, brand, support string) (html, text string, err error) {
	view := reminderView{
		Name:        msg.Name,
		OrderID:     msg.OrderID,
		CourseTitle: msg.CourseTitle,
		Total:       Rupiah(msg.Total),
		URL:         msg.URL,
		Brand:       brand,
		Support:     support,
	}

	var hb, tb bytes.Buffer
	if err = reminderHTMLTpl.Execute(&hb, view); err != nil {
		return "", "", err
	}
	if err = reminderTextTpl.Execute(&tb, view); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
