package game

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/decker502/matreshka/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost bcrypt 计算强度，测试中可调低
var PasswordHashCost = bcrypt.DefaultCost

// 用户名与密码规则
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 4
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9 _]+$`)

// ValidateUsername 检查用户名
//
// 规则：
//   - 去掉首尾空格后 3-20 个字符
//   - 只能包含字母、数字、空格和下划线
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits, spaces and underscores")
	}
	return nil
}

// ValidatePassword 检查密码长度
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// HashPassword 生成 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword 校验密码，不匹配返回 ErrBadCredentials
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// NormalizePreference 校验并规范化偏好值
func NormalizePreference(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch field {
	case PrefDifficulty:
		d, ok := config.ParseDifficulty(value)
		if !ok {
			return "", fmt.Errorf("invalid difficulty %q", value)
		}
		return string(d), nil
	case PrefAvatarColor:
		if !config.IsValidDollColor(value) {
			return "", fmt.Errorf("invalid avatar color %q", value)
		}
		return value, nil
	case PrefVolume:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 1 {
			return "", fmt.Errorf("volume must be between 0 and 1, got %q", value)
		}
		return strconv.FormatFloat(v, 'f', 2, 64), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownPreference, field)
}

// DefaultPreference 偏好字段的默认值
func DefaultPreference(field string) (string, error) {
	switch field {
	case PrefDifficulty:
		return string(config.DefaultDifficulty), nil
	case PrefAvatarColor:
		return string(config.DefaultAvatarColor), nil
	case PrefVolume:
		return "0.80", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownPreference, field)
}
