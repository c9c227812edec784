package service

import (
	"bytes"
	"html/template"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/money"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/infra/mail"
)

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "quote"}}<html><body>
<p>Guten Tag {{.Name}},</p>
<p>vielen Dank für Ihre Anfrage. Im Anhang finden Sie unser Angebot {{.Number}} über {{.Price}}.</p>
{{if .URL}}<p>Sie können das Angebot online ansehen und bestätigen:<br><a href="{{.URL}}">Angebot ansehen und bestätigen</a></p>{{end}}
<p>Mit freundlichen Grüßen<br>{{.Company}}</p>
</body></html>{{end}}

{{define "notice"}}<html><body>
<p>{{.Name}} hat das Angebot {{.Number}} über {{.Price}} {{.Verb}}.</p>
{{if .Reason}}<p>Begründung: {{.Reason}}</p>{{end}}
<p>Kundennummer: {{.CustomerNumber}}</p>
</body></html>{{end}}
`))

type quoteMailData struct {
	Name, Number, Price, URL, Company string
}

func quoteEmail(c customer.Customer, q quote.Quote, url, company string, pdfBytes []byte) (mail.Message, error) {
	var body bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&body, "quote", quoteMailData{
		Name: c.Name, Number: q.Number, Price: money.FormatEUR(q.Price), URL: url, Company: company,
	})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      []string{c.Email},
		Subject: "Ihr Umzugsangebot " + q.Number,
		HTML:    body.String(),
		Attachments: []mail.Attachment{
			{Filename: "Angebot-" + q.Number + ".pdf", ContentType: "application/pdf", Data: pdfBytes},
		},
	}, nil
}

type noticeMailData struct {
	Name, Number, Price, Verb, Reason, CustomerNumber string
}

func officeNotice(to string, c customer.Customer, q quote.Quote, confirmed bool, reason string) (mail.Message, error) {
	verb, subject := "abgelehnt", "Angebot abgelehnt: "
	if confirmed {
		verb, subject = "bestätigt", "Angebot bestätigt: "
	}
	var body bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&body, "notice", noticeMailData{
		Name: c.Name, Number: q.Number, Price: money.FormatEUR(q.Price), Verb: verb, Reason: reason, CustomerNumber: c.Number,
	})
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		To:      []string{to},
		ReplyTo: c.Email,
		Subject: subject + q.Number + " (" + c.Name + ")",
		HTML:    body.String(),
	}, nil
}
