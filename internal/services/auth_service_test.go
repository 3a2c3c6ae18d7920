// internal/services/auth_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/config"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	carts   *CartService
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = newTestDB(suite.T())

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1, RefreshTokenTTL: 24},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	suite.carts = NewCartService(NewDatabaseCartStore(suite.db), NewProductService(suite.db), false)
	suite.service = NewAuthService(suite.db, cfg, nil, suite.carts)
}

func (suite *AuthServiceTestSuite) register(email string) *models.User {
	user, err := suite.service.Register(&RegisterRequest{Name: "Sara", Email: email, Password: "Password123"})
	suite.Require().NoError(err)
	return user
}

// setToken replaces the emailed token with one the test knows.
func (suite *AuthServiceTestSuite) setToken(user *models.User, token string, expires time.Time) {
	err := suite.db.Model(user).Updates(map[string]interface{}{
		"verification_token":         utils.HashString(token),
		"verification_token_expires": expires,
	}).Error
	suite.Require().NoError(err)
}

func (suite *AuthServiceTestSuite) TestRegisterVerifyLogin() {
	user := suite.register("  Sara@Example.com ")
	suite.Equal("sara@example.com", user.Email)
	suite.False(user.EmailVerified)
	suite.Require().NotNil(user.VerificationToken)
	suite.Len(*user.VerificationToken, 64)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Email: "sara@example.com", Password: "Password123"}, guest("d"))
	suite.ErrorIs(err, ErrEmailNotVerified)

	suite.setToken(user, "known-token", time.Now().Add(time.Hour))
	suite.ErrorIs(suite.service.VerifyEmail("wrong-token"), ErrInvalidVerificationToken)
	suite.Require().NoError(suite.service.VerifyEmail("known-token"))

	resp, err := suite.service.Login(suite.ctx, &LoginRequest{Email: "SARA@example.com", Password: "Password123"}, guest("d"))
	suite.Require().NoError(err)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(3600, resp.ExpiresIn)
	suite.False(resp.Identity.IsGuest())
	suite.Require().NotNil(resp.Cart)
	suite.Empty(resp.Cart.Items)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(user.ID.String(), claims.UserID)

	refreshed, err := suite.service.RefreshToken(resp.RefreshToken, "d")
	suite.Require().NoError(err)
	suite.NotEmpty(refreshed.AccessToken)

	_, err = suite.service.RefreshToken(resp.AccessToken, "d")
	suite.ErrorIs(err, ErrInvalidRefreshToken)

	_, err = utils.ValidateJWT(resp.RefreshToken)
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	suite.register("dup@example.com")

	_, err := suite.service.Register(&RegisterRequest{Name: "Other", Email: "DUP@example.com", Password: "Password123"})
	suite.ErrorIs(err, ErrEmailExists)
}

func (suite *AuthServiceTestSuite) TestLoginRejectsBadPassword() {
	createUser(suite.T(), suite.db, "known@example.com", models.UserRoleUser)

	_, err := suite.service.Login(suite.ctx, &LoginRequest{Email: "known@example.com", Password: "nope"}, guest("d"))
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, &LoginRequest{Email: "missing@example.com", Password: "nope"}, guest("d"))
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestExpiredVerificationToken() {
	user := suite.register("late@example.com")
	suite.setToken(user, "stale", time.Now().Add(-time.Minute))

	suite.ErrorIs(suite.service.VerifyEmail("stale"), ErrInvalidVerificationToken)
	suite.ErrorIs(suite.service.VerifyEmail(""), ErrInvalidVerificationToken)
}

func (suite *AuthServiceTestSuite) TestResendVerification() {
	user := suite.register("resend@example.com")
	before := *user.VerificationToken

	suite.Require().NoError(suite.service.ResendVerification("resend@example.com"))

	reloaded, err := suite.service.GetUserByID(user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(reloaded.VerificationToken)
	suite.NotEqual(before, *reloaded.VerificationToken)

	// Unknown addresses do not reveal anything
	suite.NoError(suite.service.ResendVerification("nobody@example.com"))

	verified := createUser(suite.T(), suite.db, "done@example.com", models.UserRoleUser)
	suite.ErrorIs(suite.service.ResendVerification(verified.Email), ErrEmailAlreadyVerified)
}

func (suite *AuthServiceTestSuite) TestLoginAndLogoutSwitchCarts() {
	user := createUser(suite.T(), suite.db, "shopper@example.com", models.UserRoleUser)
	product := createProduct(suite.T(), suite.db, "Case", 300, nil)

	_, err := suite.carts.AddItem(suite.ctx, guest("phone"), product.ID)
	suite.Require().NoError(err)

	resp, err := suite.service.Login(suite.ctx, &LoginRequest{Email: user.Email, Password: "Password123"}, guest("phone"))
	suite.Require().NoError(err)
	suite.Empty(resp.Cart.Items)

	cart, err := suite.service.Logout(suite.ctx, resp.Identity)
	suite.Require().NoError(err)
	suite.Equal(1, cart.TotalItems())

	cart, err = suite.service.Logout(suite.ctx, guest("phone"))
	suite.Require().NoError(err)
	suite.Equal(1, cart.TotalItems())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
