package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
}

func TestMailer_Send(t *testing.T) {
	api := &fakeSES{}
	m := NewMailer(api, "noreply@venture.test")

	id, err := m.Send(context.Background(), Email{To: "ada@fund.test", Subject: "Hi", TextBody: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, api.input)
	assert.Equal(t, "noreply@venture.test", aws.ToString(api.input.Source))
	assert.Equal(t, []string{"ada@fund.test"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(api.input.Message.Subject.Data))
	assert.Equal(t, "Hello", aws.ToString(api.input.Message.Body.Html.Data))
}

func TestMailer_Errors(t *testing.T) {
	m := NewMailer(&fakeSES{err: errors.New("throttled")}, "noreply@venture.test")

	_, err := m.Send(context.Background(), Email{Subject: "Hi"})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), Email{To: "ada@fund.test"})
	assert.ErrorContains(t, err, "throttled")
}

func TestSMSSender_SendSMS(t *testing.T) {
	api := &fakeSNS{}
	s := NewSMSSender(api, "VENTURE")

	id, err := s.SendSMS(context.Background(), "+15550100", "You have new matches")
	require.NoError(t, err)
	assert.Equal(t, "sms-1", id)
	assert.Equal(t, "+15550100", aws.ToString(api.input.PhoneNumber))
	assert.Equal(t, "VENTURE", aws.ToString(api.input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))

	_, err = s.SendSMS(context.Background(), "", "x")
	assert.Error(t, err)
}
