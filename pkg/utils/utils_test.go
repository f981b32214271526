package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSHA256Hex(t *testing.T) {
	// Binance 文档中的签名示例
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	assert.Equal(t, "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", HMACSHA256Hex(secret, query))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, ClampLimit(0, 100, 1000))
	assert.Equal(t, 100, ClampLimit(-5, 100, 1000))
	assert.Equal(t, 20, ClampLimit(20, 100, 1000))
	assert.Equal(t, 1000, ClampLimit(5000, 100, 1000))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("123456"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("abc-123"))
	assert.False(t, IsDigits("12.5"))
}
