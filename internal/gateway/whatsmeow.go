package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/utils"

	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowGateway drives a single paired WhatsApp device. The session lives
// in a local sqlite store; pairing happens by scanning the QR code exposed
// through /qrcode.
type WhatsmeowGateway struct {
	client    *whatsmeow.Client
	dbPath    string
	handler   InboundHandler
	connected bool

	qrMutex     sync.RWMutex
	qrImage     string // data URL, PNG base64
	qrCreatedAt time.Time
}

func NewWhatsmeowGateway(dbPath string) *WhatsmeowGateway {
	return &WhatsmeowGateway{dbPath: dbPath}
}

// SetInboundHandler registers the callback invoked for every incoming
// message. Must be called before Connect.
func (g *WhatsmeowGateway) SetInboundHandler(handler InboundHandler) {
	g.handler = handler
}

func (g *WhatsmeowGateway) Connect() error {
	store.DeviceProps.Os = proto.String("TechEntryBot")
	store.DeviceProps.PlatformType = waProto.DeviceProps_DESKTOP.Enum()

	if g.client != nil {
		utils.LogDebug("Client already exists, reconnecting")
		return g.Reconnect()
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)", g.dbPath)
	deviceStore, err := sqlstore.New("sqlite", dsn, nil)
	if err != nil {
		return fmt.Errorf("error creating device store: %v", err)
	}

	device, err := deviceStore.GetFirstDevice()
	if err != nil {
		return fmt.Errorf("error loading device: %v", err)
	}

	client := whatsmeow.NewClient(device, clientLog)
	g.client = client
	client.AddEventHandler(g.eventHandler)
	client.Store.Platform = "TechEntryBot"

	if client.Store.ID == nil {
		utils.LogInfo("No paired device, generating QR code")
		qrChan, _ := client.GetQRChannel(context.Background())
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					g.saveQRCode(evt.Code)
				}
			}
		}()
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("error connecting: %v", err)
	}
	return nil
}

func (g *WhatsmeowGateway) Reconnect() error {
	if g.client == nil {
		return g.Connect()
	}
	g.client.Disconnect()
	if err := g.client.Connect(); err != nil {
		return fmt.Errorf("error reconnecting: %v", err)
	}
	return nil
}

func (g *WhatsmeowGateway) Disconnect() {
	if g.client != nil {
		g.client.Disconnect()
	}
}

func (g *WhatsmeowGateway) IsConnected() bool {
	return g.client != nil && g.client.IsConnected() && g.client.IsLoggedIn() && g.connected
}

func (g *WhatsmeowGateway) eventHandler(evt interface{}) {
	switch e := evt.(type) {
	case *events.Message:
		g.handleMessage(e)
	case *events.Connected:
		utils.LogInfo("WhatsApp connected")
		g.connected = true
	case *events.Disconnected:
		utils.LogWarning("WhatsApp disconnected")
		g.connected = false
	case *events.LoggedOut:
		utils.LogWarning("WhatsApp logged out, pairing required")
		g.connected = false
	}
}

func (g *WhatsmeowGateway) handleMessage(evt *events.Message) {
	if g.handler == nil || evt.Info.IsFromMe {
		return
	}

	msg := evt.Message
	in := models.InboundMessage{
		From:        "+" + evt.Info.Sender.User,
		ProfileName: evt.Info.PushName,
	}

	if lr := msg.GetListResponseMessage(); lr != nil {
		in.ListReplyID = lr.GetSingleSelectReply().GetSelectedRowID()
	}
	if br := msg.GetButtonsResponseMessage(); br != nil {
		in.ButtonID = br.GetSelectedButtonID()
	}
	if cm := msg.GetContactMessage(); cm != nil {
		in.ContactName = cm.GetDisplayName()
		in.ContactPhone = phoneFromVCard(cm.GetVcard())
	}
	in.Body = msg.GetConversation()
	if in.Body == "" {
		in.Body = msg.GetExtendedTextMessage().GetText()
	}

	g.handler(in.From, in)
}

var vcardTelPattern = regexp.MustCompile(`(?m)^TEL[^:]*:(.+)$`)

func phoneFromVCard(vcard string) string {
	m := vcardTelPattern.FindStringSubmatch(vcard)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (g *WhatsmeowGateway) saveQRCode(code string) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		utils.LogError("Error rendering QR code: %v", err)
		return
	}
	g.qrMutex.Lock()
	g.qrImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	g.qrCreatedAt = time.Now()
	g.qrMutex.Unlock()
	utils.LogInfo("QR code refreshed")
}

// QRCode waits briefly for a fresh pairing code and returns it as a PNG data
// URL. Fails when the device is already paired or no code arrives in time.
func (g *WhatsmeowGateway) QRCode() (string, error) {
	if g.IsConnected() {
		return "", fmt.Errorf("whatsapp is already connected, no QR code needed")
	}

	for attempt := 0; attempt < 10; attempt++ {
		g.qrMutex.RLock()
		image, createdAt := g.qrImage, g.qrCreatedAt
		g.qrMutex.RUnlock()
		if image != "" && time.Since(createdAt) <= 30*time.Second {
			return image, nil
		}
		time.Sleep(1 * time.Second)
	}
	return "", fmt.Errorf("QR code not available, try again")
}

func (g *WhatsmeowGateway) SendTemplate(ctx context.Context, phone, templateID string) error {
	body, err := templateBody(templateID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return g.send(ctx, phone, &waProto.Message{
		Conversation: proto.String(body),
	})
}

func (g *WhatsmeowGateway) SendSlotList(ctx context.Context, phone string, sections []models.SlotSection) error {
	listSections := make([]*waProto.ListMessage_Section, 0, len(sections))
	for _, section := range sections {
		rows := make([]*waProto.ListMessage_Row, 0, len(section.Slots))
		for _, slot := range section.Slots {
			rows = append(rows, &waProto.ListMessage_Row{
				RowID:       proto.String(slot.ID),
				Title:       proto.String(slot.Label),
				Description: proto.String("Tech entry time"),
			})
		}
		listSections = append(listSections, &waProto.ListMessage_Section{
			Title: proto.String(section.Title),
			Rows:  rows,
		})
	}

	return g.send(ctx, phone, &waProto.Message{
		ListMessage: &waProto.ListMessage{
			Title:       proto.String("Tech entry time"),
			Description: proto.String("Pick the entry time for your setup:"),
			FooterText:  proto.String("Range: 06:00-20:00"),
			ButtonText:  proto.String("Pick a time"),
			ListType:    waProto.ListMessage_SINGLE_SELECT.Enum(),
			Sections:    listSections,
		},
	})
}

func (g *WhatsmeowGateway) SendOptionButtons(ctx context.Context, phone string) error {
	return g.send(ctx, phone, &waProto.Message{
		ButtonsMessage: &waProto.ButtonsMessage{
			ContentText: proto.String("More options:"),
			Buttons: []*waProto.ButtonsMessage_Button{
				{
					ButtonID:   proto.String(models.ButtonIDUnsure),
					ButtonText: &waProto.ButtonsMessage_Button_ButtonText{DisplayText: proto.String("I don't know yet")},
					Type:       waProto.ButtonsMessage_Button_RESPONSE.Enum(),
				},
				{
					ButtonID:   proto.String(models.ButtonIDNotContact),
					ButtonText: &waProto.ButtonsMessage_Button_ButtonText{DisplayText: proto.String("I'm not the contact")},
					Type:       waProto.ButtonsMessage_Button_RESPONSE.Enum(),
				},
			},
		},
	})
}

func (g *WhatsmeowGateway) send(ctx context.Context, phone string, message *waProto.Message) error {
	if g.client == nil {
		return fmt.Errorf("%w: client not connected", ErrSendFailure)
	}
	jid, err := utils.ParseJID(phone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}

	_, err = g.client.SendMessage(ctx, jid, message)
	if err != nil {
		utils.LogWarning("Send to %s failed on first attempt: %v", phone, err)
		if strings.Contains(err.Error(), "untrusted identity") ||
			strings.Contains(err.Error(), "database is locked") ||
			strings.Contains(err.Error(), "SQLITE_BUSY") {
			if rerr := g.Reconnect(); rerr != nil {
				return fmt.Errorf("%w: reconnect failed: %v (original: %v)", ErrSendFailure, rerr, err)
			}
			_, err = g.client.SendMessage(ctx, jid, message)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailure, err)
	}
	return nil
}
