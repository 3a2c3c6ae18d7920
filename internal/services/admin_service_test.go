// internal/services/admin_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	orders   *OrderService
	service  *AdminService
	users    *UserService
	contacts *ContactService
	settings *SettingsService
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	carts := NewCartService(NewDatabaseCartStore(suite.db), NewProductService(suite.db), false)
	suite.orders = NewOrderService(suite.db, newMemoryFileStorage(), &recordingPublisher{}, NewMemoryIdempotencyStore(time.Hour), carts, 0.01)
	suite.service = NewAdminService(suite.db, suite.orders)
	suite.users = NewUserService(suite.db)
	suite.contacts = NewContactService(suite.db)
	suite.settings = NewSettingsService(suite.db)
}

func (suite *AdminServiceTestSuite) TestDashboardStats() {
	createUser(suite.T(), suite.db, "a@example.com", models.UserRoleUser)
	product := createProduct(suite.T(), suite.db, "Case", 300, nil)
	ctx := context.Background()

	req := &PlaceOrderRequest{
		Items:           []OrderLineRequest{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod:   models.PaymentMethodCBE,
		DeliveryAddress: "Bole",
		PhoneNumber:     "0911",
	}
	first, err := suite.orders.PlaceOrder(ctx, guest("d"), req, "")
	suite.Require().NoError(err)
	_, err = suite.orders.PlaceOrder(ctx, guest("d"), req, "")
	suite.Require().NoError(err)
	_, err = suite.orders.SetStatus(ctx, first.ID, models.OrderStatusApproved)
	suite.Require().NoError(err)

	_, err = suite.contacts.Create(&ContactRequest{Name: "Kebede", Email: "k@example.com", Message: "Do you ship to Adama?"})
	suite.Require().NoError(err)

	stats, err := suite.service.GetDashboardStats()
	suite.Require().NoError(err)
	suite.Equal(int64(1), stats.Users)
	suite.Equal(int64(1), stats.Products)
	suite.Equal(int64(2), stats.Orders)
	suite.Equal(int64(1), stats.PendingOrders)
	suite.Equal(int64(1), stats.NewMessages)
	suite.True(decimal.NewFromInt(600).Equal(stats.Revenue))
}

func (suite *AdminServiceTestSuite) TestGetUsersFiltersAndSearches() {
	createUser(suite.T(), suite.db, "editor@example.com", models.UserRoleEditor)
	createUser(suite.T(), suite.db, "buyer@example.com", models.UserRoleUser)
	createUser(suite.T(), suite.db, "other@example.com", models.UserRoleUser)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "email", Order: "asc"}

	role := models.UserRoleUser
	users, total, err := suite.service.GetUsers(AdminUserFilter{PaginationParams: params, Role: &role})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal("buyer@example.com", users[0].Email)

	params.Search = "EDIT"
	users, total, err = suite.service.GetUsers(AdminUserFilter{PaginationParams: params})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(models.UserRoleEditor, users[0].Role)
}

func (suite *AdminServiceTestSuite) TestUpdateUserRole() {
	admin := createUser(suite.T(), suite.db, "admin@example.com", models.UserRoleAdmin)
	user := createUser(suite.T(), suite.db, "staff@example.com", models.UserRoleUser)

	_, err := suite.service.UpdateUserRole(admin.ID, models.UserRoleUser, admin.ID)
	suite.ErrorIs(err, ErrSelfRoleChange)

	_, err = suite.service.UpdateUserRole(uuid.New(), models.UserRoleEditor, admin.ID)
	suite.ErrorIs(err, ErrUserNotFound)

	_, err = suite.service.UpdateUserRole(user.ID, "owner", admin.ID)
	suite.Error(err)

	updated, err := suite.service.UpdateUserRole(user.ID, models.UserRoleEditor, admin.ID)
	suite.Require().NoError(err)
	suite.Equal(models.UserRoleEditor, updated.Role)

	reloaded, err := suite.users.GetUserByID(user.ID)
	suite.Require().NoError(err)
	suite.Equal(models.UserRoleEditor, reloaded.Role)
}

func (suite *AdminServiceTestSuite) TestProfileAndPassword() {
	user := createUser(suite.T(), suite.db, "me@example.com", models.UserRoleUser)

	updated, err := suite.users.UpdateProfile(user.ID, &UpdateUserProfileRequest{Name: "  Hana  "})
	suite.Require().NoError(err)
	suite.Equal("Hana", updated.Name)

	err = suite.users.ChangePassword(user.ID, &ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "NewPass456"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	suite.Require().NoError(suite.users.ChangePassword(user.ID, &ChangePasswordRequest{CurrentPassword: "Password123", NewPassword: "NewPass456"}))

	reloaded, err := suite.users.GetUserByID(user.ID)
	suite.Require().NoError(err)
	suite.NoError(reloaded.CheckPassword("NewPass456"))
}

func (suite *AdminServiceTestSuite) TestContactMessages() {
	message, err := suite.contacts.Create(&ContactRequest{Name: " Liya ", Email: "Liya@Example.com", Message: "Hello"})
	suite.Require().NoError(err)
	suite.Equal("liya@example.com", message.Email)
	suite.Equal(models.ContactStatusNew, message.Status)

	updated, err := suite.contacts.UpdateStatus(message.ID, models.ContactStatusReplied)
	suite.Require().NoError(err)
	suite.Equal(models.ContactStatusReplied, updated.Status)

	result, err := suite.contacts.List(utils.PaginationParams{Page: 1, Limit: 10, Order: "desc", Status: "replied"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), result.Total)

	suite.Require().NoError(suite.contacts.Delete(message.ID))
	suite.ErrorIs(suite.contacts.Delete(message.ID), ErrContactNotFound)

	_, err = suite.contacts.UpdateStatus(message.ID, models.ContactStatusRead)
	suite.ErrorIs(err, ErrContactNotFound)
}

func (suite *AdminServiceTestSuite) TestSettingsFeedPaymentInfo() {
	info, err := suite.settings.PaymentInfo(models.PaymentMethodTelebirr)
	suite.Require().NoError(err)
	suite.Equal("+251 911 234 567", info.PhoneNumber)

	_, err = suite.settings.Update("telebirr_phone", "+251 922 000 000", nil)
	suite.Require().NoError(err)
	_, err = suite.settings.Update("telebirr_phone", "+251 933 111 111", nil)
	suite.Require().NoError(err)

	all, err := suite.settings.GetAll()
	suite.Require().NoError(err)
	suite.Equal("+251 933 111 111", all["telebirr_phone"])

	info, err = suite.settings.PaymentInfo(models.PaymentMethodTelebirr)
	suite.Require().NoError(err)
	suite.Equal("+251 933 111 111", info.PhoneNumber)
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
