package azuread

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/utils/platformerrors"
)

// cognitiveServicesScope is the audience for Azure OpenAI bearer tokens.
const cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// TokenProvider obtains bearer tokens through the default Azure credential
// chain (environment, workload identity, managed identity, CLI). The
// credential caches and refreshes tokens internally, so Token is cheap to
// call per request.
type TokenProvider struct {
	credential *azidentity.DefaultAzureCredential
	log        zerolog.Logger
}

// NewTokenProvider builds the credential chain. Failure here means no
// credential source is available at all and the process should not start.
func NewTokenProvider(log zerolog.Logger) (*TokenProvider, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUpstream,
			"initialize azure credential chain", err)
	}
	return &TokenProvider{
		credential: credential,
		log:        log.With().Str("component", "azuread-token-provider").Logger(),
	}, nil
}

// Token returns a bearer token scoped to the cognitive services audience.
// No retry here: transient identity service failures surface to the
// forwarder, which owns the retry policy.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{cognitiveServicesScope},
	})
	if err != nil {
		p.log.Error().Err(err).Msg("acquire bearer token")
		return "", platformerrors.NewError(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUpstream,
			"acquire bearer token", err)
	}
	return token.Token, nil
}
