package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/guimove/tablefit/internal/model"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

var jan1 = model.Date{Year: 2024, Month: time.January, Day: 1}

func TestS3Publisher_Key(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "calendar-2024-01-01-4p.json"},
		{"calendar", "calendar/calendar-2024-01-01-4p.json"},
		{"/sites/bistro/", "sites/bistro/calendar-2024-01-01-4p.json"},
	}
	for _, tt := range tests {
		p := newS3Publisher(&fakeS3{}, "bucket", tt.prefix)
		if got := p.Key(jan1, 4); got != tt.want {
			t.Errorf("prefix %q: Key() = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestS3Publisher_PublishCalendar(t *testing.T) {
	fake := &fakeS3{}
	p := newS3Publisher(fake, "menus", "calendar")

	snap := CalendarSnapshot{
		GeneratedAt: time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC),
		From:        jan1,
		People:      4,
		Days: []model.DayAvailability{
			{Date: jan1, Feasible: true, Reason: "ok"},
			{Date: jan1.AddDays(1), Reason: "closed"},
		},
	}

	loc, err := p.PublishCalendar(context.Background(), snap)
	if err != nil {
		t.Fatalf("PublishCalendar: %v", err)
	}
	if loc != "s3://menus/calendar/calendar-2024-01-01-4p.json" {
		t.Errorf("location = %q", loc)
	}
	if aws.ToString(fake.input.Bucket) != "menus" || aws.ToString(fake.input.ContentType) != "application/json" {
		t.Errorf("input = %+v", fake.input)
	}

	var decoded struct {
		From string `json:"from"`
		Days []struct {
			Date     string `json:"date"`
			Feasible bool   `json:"feasible"`
		} `json:"days"`
	}
	if err := json.Unmarshal(fake.body, &decoded); err != nil {
		t.Fatalf("uploaded body is not JSON: %v", err)
	}
	if decoded.From != "2024-01-01" || len(decoded.Days) != 2 || decoded.Days[1].Feasible {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestS3Publisher_UploadError(t *testing.T) {
	boom := errors.New("access denied")
	p := newS3Publisher(&fakeS3{err: boom}, "menus", "")
	if _, err := p.PublishCalendar(context.Background(), CalendarSnapshot{From: jan1, People: 2}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	if _, err := NewS3Publisher(context.Background(), Options{Region: "us-east-1"}); !errors.Is(err, ErrNoBucket) {
		t.Errorf("expected ErrNoBucket, got %v", err)
	}
}

func TestNewS3Publisher_CustomEndpoint(t *testing.T) {
	p, err := NewS3Publisher(context.Background(), Options{
		Bucket:          "menus",
		Region:          "auto",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	if err != nil {
		t.Fatalf("NewS3Publisher: %v", err)
	}
	if _, ok := p.client.(*s3.Client); !ok {
		t.Errorf("client = %T, want *s3.Client", p.client)
	}
}
