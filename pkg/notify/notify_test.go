package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		RecipientName:  "Ana",
		RecipientEmail: "ana@example.com",
		RecipientPhone: "+34600000000",
		RaceName:       "City Marathon",
		DepartureDay:   "2027-06-01",
		DepartureHour:  "07:30",
		DepartureCity:  "Madrid",
		TripURL:        "http://localhost:3000/trips/trip-1",
	}
}

func TestMailGatewaySend(t *testing.T) {
	var received sendMailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(sendMailResponse{Status: "sent", MessageID: "m1"})
	}))
	defer server.Close()

	gateway := NewMailGateway(MailConfig{APIURL: server.URL, APIKey: "api-key", Sender: "no-reply@runpool.app"})
	err := gateway.Send(TemplateTripJoined, sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "no-reply@runpool.app", received.From)
	assert.Equal(t, "ana@example.com", received.To)
	assert.Equal(t, TemplateTripJoined, received.Template)
	assert.Equal(t, "City Marathon", received.Params["race"])
}

func TestMailGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(sendMailResponse{Status: "error", Error: "upstream down"})
	}))
	defer server.Close()

	gateway := NewMailGateway(MailConfig{APIURL: server.URL, APIKey: "api-key", Sender: "no-reply@runpool.app"})
	err := gateway.Send(TemplateTripCreated, sampleEvent())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestWhatsAppGatewaySend(t *testing.T) {
	var received sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(sendMessageResponse{Status: "sent", MessageID: "w1"})
	}))
	defer server.Close()

	gateway := NewWhatsAppGateway(WhatsAppConfig{APIURL: server.URL, Token: "token", Sender: "+34911111111"})
	err := gateway.Send(TemplateTripCancelled, sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "+34600000000", received.To)
	assert.Equal(t, TemplateTripCancelled, received.Template)
}

func TestFanoutSkipsWhatsAppWithoutPhone(t *testing.T) {
	mailCalls := 0
	mailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mailCalls++
		json.NewEncoder(w).Encode(sendMailResponse{Status: "sent"})
	}))
	defer mailServer.Close()

	whatsappCalls := 0
	whatsappServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		whatsappCalls++
		json.NewEncoder(w).Encode(sendMessageResponse{Status: "sent"})
	}))
	defer whatsappServer.Close()

	notifier := NewFanoutNotifier(
		NewMailGateway(MailConfig{APIURL: mailServer.URL, APIKey: "k", Sender: "s"}),
		NewWhatsAppGateway(WhatsAppConfig{APIURL: whatsappServer.URL, Token: "t", Sender: "s"}),
	)

	event := sampleEvent()
	event.RecipientPhone = ""
	require.NoError(t, notifier.TripJoined(event))
	assert.Equal(t, 1, mailCalls)
	assert.Equal(t, 0, whatsappCalls)

	require.NoError(t, notifier.TripJoined(sampleEvent()))
	assert.Equal(t, 2, mailCalls)
	assert.Equal(t, 1, whatsappCalls)
}
