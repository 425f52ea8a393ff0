package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

func TestPayload_OmitsEmptyOptionals(t *testing.T) {
	p := NewPayload().
		Set(KeyDevice, "pixel").
		Set(KeyStatus, "true").
		SetOptional(KeyLogFile, "tok/build.log").
		SetOptional(KeyErrorLogFile, "")
	m := p.Map()
	if _, ok := m[KeyErrorLogFile]; ok {
		t.Fatalf("empty optional must be omitted: %v", m)
	}
	want := []string{KeyDevice, KeyLogFile, KeyStatus}
	if !reflect.DeepEqual(p.Keys(), want) {
		t.Fatalf("keys %v", p.Keys())
	}
	m[KeyDevice] = "changed"
	if p.Map()[KeyDevice] != "pixel" {
		t.Fatalf("Map must return a copy")
	}
}

type fakeMessaging struct {
	msg *messaging.Message
	id  string
	err error
}

func (f *fakeMessaging) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.msg = m
	return f.id, f.err
}

func TestFCM_SendsDataMessage(t *testing.T) {
	fake := &fakeMessaging{id: "projects/p/messages/1"}
	id, err := NewFCMWithClient(fake).Send(context.Background(), "tok", map[string]string{"status": "true"})
	if err != nil || id != "projects/p/messages/1" {
		t.Fatalf("id %q err %v", id, err)
	}
	if fake.msg.Token != "tok" || fake.msg.Data["status"] != "true" || fake.msg.Notification != nil {
		t.Fatalf("unexpected message: %+v", fake.msg)
	}
}

func TestFCM_ErrorWrapped(t *testing.T) {
	fake := &fakeMessaging{err: errors.New("registration-token-not-registered")}
	id, err := NewFCMWithClient(fake).Send(context.Background(), "tok", nil)
	if id != "" || !errors.Is(err, fake.err) {
		t.Fatalf("id %q err %v", id, err)
	}
}

func TestConsole_PrintsRedactedMessage(t *testing.T) {
	var buf bytes.Buffer
	id, err := Console{W: &buf}.Send(context.Background(), "abcdefghijklmnop", map[string]string{"device": "pixel"})
	if err != nil || !strings.HasPrefix(id, "console-") {
		t.Fatalf("id %q err %v", id, err)
	}
	var got consoleMessage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != id || got.Token != "abcd…mnop" || got.Data["device"] != "pixel" {
		t.Fatalf("unexpected message: %+v", got)
	}
}
