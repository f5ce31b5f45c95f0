package utils

import (
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Messenger delivers WhatsApp messages and reports their delivery status.
type Messenger interface {
	SendWhatsApp(to, body string) (messageID string, err error)
	MessageStatus(messageID string) (string, error)
}

type twilioMessenger struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioMessenger(accountSid, authToken, whatsappNumber string) Messenger {
	return &twilioMessenger{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: whatsappAddress(whatsappNumber),
	}
}

func (t *twilioMessenger) SendWhatsApp(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsappAddress(to))
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", errors.New("twilio returned no message SID")
	}
	return *resp.Sid, nil
}

func (t *twilioMessenger) MessageStatus(messageID string) (string, error) {
	resp, err := t.client.Api.FetchMessage(messageID, &twilioApi.FetchMessageParams{})
	if err != nil {
		return "", err
	}
	if resp.Status == nil {
		return "", nil
	}
	return *resp.Status, nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + NormalizePhone(number)
}
