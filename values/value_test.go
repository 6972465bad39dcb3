package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualNullAndBool(t *testing.T) {
	null := NewNull()
	trueVal := NewBool(true)
	falseVal := NewBool(false)

	assert.True(t, null.Equal(falseVal), "null == false should be true under loose equality")
	assert.True(t, falseVal.Equal(null), "== is commutative")
	assert.False(t, null.Equal(trueVal), "null == true should be false under loose equality")
	assert.True(t, null.Equal(NewNull()), "null == null should be true")
}

func TestIdenticalNullAndBool(t *testing.T) {
	null := NewNull()
	falseVal := NewBool(false)

	assert.False(t, null.Identical(falseVal), "null === false should be false (different tags)")
	assert.True(t, null.Identical(NewNull()), "null === null should be true")
}

func TestEqualNumericAndString(t *testing.T) {
	assert.True(t, NewInt(1).Equal(NewFloat(1.0)))
	assert.True(t, NewInt(10).Equal(NewString("10")))
	assert.False(t, NewInt(10).Equal(NewString("10abc")))
	assert.True(t, NewString("abc").Equal(NewString("abc")))
}

func TestCloneProducesIndependentArray(t *testing.T) {
	a := NewArray()
	a.ArraySet(NewInt(0), NewInt(1))

	b := a.Clone()
	b.ArraySet(NewInt(0), NewInt(2))

	assert.Equal(t, int64(1), a.ArrayGet(NewInt(0)).ToInt())
	assert.Equal(t, int64(2), b.ArrayGet(NewInt(0)).ToInt())
	assert.Equal(t, uint32(1), a.RefCount())
	assert.Equal(t, uint32(1), b.RefCount())
}

func TestIsShared(t *testing.T) {
	a := NewArray()
	assert.False(t, a.IsShared())
	Retain(a)
	assert.True(t, a.IsShared())
}
