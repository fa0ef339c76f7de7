package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func TestService_DelegatesToProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(&fakeSource{provider: provider}, logging.New("error"))
	ctx := context.Background()

	res := svc.SubmitContactForm(ctx, forms.ContactInput{
		FirstName:          "John",
		LastName:           "Doe",
		Email:              "john@example.com",
		ProjectType:        "robotics",
		ProjectDescription: "Pick and place cell",
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "contact-1", res.Data.ID)

	list := svc.GetContactSubmissions(ctx)
	require.True(t, list.Success)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "John", list.Data[0].FirstName)

	inq := svc.SubmitServiceInquiry(ctx, forms.ServiceInquiryInput{ServiceType: forms.ServiceAutomation, Email: "ops@example.com"})
	require.True(t, inq.Success)
	inquiries := svc.GetServiceInquiries(ctx)
	require.True(t, inquiries.Success)
	assert.Len(t, inquiries.Data, 1)
}

func TestService_ResolutionFailureBecomesResult(t *testing.T) {
	cfgErr := forms.ConfigurationError("Missing Supabase environment variable SUPABASE_URL", nil)
	svc := NewService(&fakeSource{err: cfgErr}, logging.New("error"))
	ctx := context.Background()

	res := svc.SubmitContactForm(ctx, forms.ContactInput{})
	assert.False(t, res.Success)
	assert.Equal(t, forms.KindConfiguration, res.ErrorKind)
	assert.Equal(t, "Missing Supabase environment variable SUPABASE_URL", res.Error)

	assert.False(t, svc.SubmitServiceInquiry(ctx, forms.ServiceInquiryInput{}).Success)
	assert.False(t, svc.GetContactSubmissions(ctx).Success)
	assert.False(t, svc.GetServiceInquiries(ctx).Success)
}

func TestService_CurrentDatabaseType(t *testing.T) {
	svc := NewService(&fakeSource{kind: database.KindPocketBase}, nil)
	assert.Equal(t, database.KindPocketBase, svc.CurrentDatabaseType())
}

func TestNewService_PanicsOnNilSource(t *testing.T) {
	assert.Panics(t, func() { NewService(nil, nil) })
}
