package account

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"approvalflow/bizerror"
	"approvalflow/common"
	"approvalflow/persistence"
	"approvalflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc        = CreateUser
	QueryUsersFunc        = QueryUsers
	QueryAccountNamesFunc = QueryAccountNames
	UsersExistFunc        = UsersExist
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: common.NextId(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Admin: c.Admin}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Admin: user.Admin}, nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

// QueryAccountNames resolves display names in one query, keyed by user id.
func QueryAccountNames(ids []types.ID, s *session.Session) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// UsersExist verifies every referenced user id inside the caller's
// transaction, failing with ErrUserNotFound on the first missing one.
func UsersExist(ids []types.ID, db *gorm.DB) error {
	if len(ids) == 0 {
		return nil
	}
	uniques := map[types.ID]bool{}
	for _, id := range ids {
		uniques[id] = true
	}
	distinct := make([]types.ID, 0, len(uniques))
	for id := range uniques {
		distinct = append(distinct, id)
	}

	var count int
	if err := db.Model(&User{}).Where("id IN (?)", distinct).Count(&count).Error; err != nil {
		return err
	}
	if count != len(distinct) {
		return bizerror.ErrUserNotFound
	}
	return nil
}

// BootstrapAdmin seeds the first administrator when the users table is
// empty, so a fresh instance can be logged into at all.
// ADMIN_SECRET overrides the default password.
func BootstrapAdmin(db *gorm.DB) error {
	var count int
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	secret := os.Getenv("ADMIN_SECRET")
	if secret == "" {
		secret = "admin123"
	}
	admin := User{ID: common.NextId(userIdWorker), Name: "admin", Secret: HashSha256(secret), Admin: true}
	return db.Create(&admin).Error
}

func FindUserByName(name string, db *gorm.DB) (*User, error) {
	user := User{}
	if err := db.Where(&User{Name: name}).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
