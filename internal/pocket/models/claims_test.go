package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ClaimsSuite struct {
	suite.Suite
}

func TestClaimsSuite(t *testing.T) {
	suite.Run(t, new(ClaimsSuite))
}

func (s *ClaimsSuite) TestOrderSurvivesRoundTrip() {
	in := `{"Name":"Rohan Singh","Date of Birth":"25-12-1995","License Number":"DL123456789","Age":29}`

	var c Claims
	s.Require().NoError(json.Unmarshal([]byte(in), &c))
	s.Equal([]string{"Name", "Date of Birth", "License Number", "Age"}, c.Keys())

	out, err := json.Marshal(c)
	s.Require().NoError(err)
	s.Equal(in, string(out))
}

func (s *ClaimsSuite) TestSetReplacesInPlace() {
	c := NewClaims(
		Claim{Key: "Name", Value: Text("Aarav")},
		Claim{Key: "Gender", Value: Text("Male")},
	)
	c.Set("Name", Text("Aarav Sharma"))

	s.Equal([]string{"Name", "Gender"}, c.Keys())
	v, ok := c.Get("Name")
	s.True(ok)
	s.Equal("Aarav Sharma", v.String())
}

func (s *ClaimsSuite) TestPresenceIsIndependentOfValue() {
	c := NewClaims(Claim{Key: "Empty", Value: Text("")}, Claim{Key: "Zero", Value: Number(0)})
	s.True(c.Has("Empty"))
	s.True(c.Has("Zero"))
	s.False(c.Has("Missing"))
}

func (s *ClaimsSuite) TestCloneIsIndependent() {
	orig := NewClaims(Claim{Key: "Name", Value: Text("Priya Patel")})
	clone := orig.Clone()
	clone.Set("Name", Text("Someone Else"))
	clone.Set("Extra", Text("x"))

	v, _ := orig.Get("Name")
	s.Equal("Priya Patel", v.String())
	s.Equal(1, orig.Len())
	s.False(orig.Equal(clone))
}

func (s *ClaimsSuite) TestEmptyClaimsMarshalAsObject() {
	out, err := json.Marshal(Claims{})
	s.Require().NoError(err)
	s.Equal("{}", string(out))
}

func (s *ClaimsSuite) TestRejectsNonScalarValues() {
	for _, in := range []string{
		`{"Is 18+":true}`,
		`{"Address":{"City":"Mumbai"}}`,
		`{"Tags":["a"]}`,
		`{"Name":null}`,
		`["Name"]`,
		`"Name"`,
	} {
		var c Claims
		s.Error(json.Unmarshal([]byte(in), &c), in)
	}
}

func (s *ClaimsSuite) TestNullLeavesClaimsEmpty() {
	var holder struct {
		Claims Claims `json:"claims"`
	}
	s.Require().NoError(json.Unmarshal([]byte(`{"claims":null}`), &holder))
	s.Equal(0, holder.Claims.Len())
}

func (s *ClaimsSuite) TestAllStopsEarly() {
	c := NewClaims(Claim{Key: "a", Value: Text("1")}, Claim{Key: "b", Value: Text("2")})
	var seen []string
	for k := range c.All() {
		seen = append(seen, k)
		break
	}
	s.Equal([]string{"a"}, seen)
}

func (s *ClaimsSuite) TestNumberFormatting() {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{0.1, "0.1"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{-1.5e-7, "-1.5e-7"},
		{9.5e-7, "9.5e-7"},
		{0.000001, "0.000001"},
		{-0.0000015, "-0.0000015"},
		{1e-7, "1e-7"},
	}
	for _, tt := range tests {
		out, err := json.Marshal(Number(tt.in))
		s.Require().NoError(err)
		s.Equal(tt.want, string(out), "number %v", tt.in)
	}
}

func (s *ClaimsSuite) TestSmallNumbersUseExponentInPayload() {
	out, err := json.Marshal(NewClaims(
		Claim{Key: "k", Value: Number(-1.5e-7)},
		Claim{Key: "m", Value: Number(0.0000025)},
	))
	s.Require().NoError(err)
	s.Equal(`{"k":-1.5e-7,"m":0.0000025}`, string(out))
}

func (s *ClaimsSuite) TestNonFiniteNumbersFail() {
	_, err := json.Marshal(NewClaims(Claim{Key: "n", Value: Number(math.NaN())}))
	s.Error(err)
	_, err = json.Marshal(NewClaims(Claim{Key: "n", Value: Number(math.Inf(1))}))
	s.Error(err)
}

func (s *ClaimsSuite) TestClaimValueAccessors() {
	t := Text("Indian")
	str, ok := t.Text()
	s.True(ok)
	s.Equal("Indian", str)
	_, ok = t.Number()
	s.False(ok)

	n := Number(18)
	f, ok := n.Number()
	s.True(ok)
	s.InDelta(18, f, 0)
	s.Equal(ClaimNumber, n.Kind())
	s.Equal(ClaimText, ClaimValue{}.Kind())
	s.False(Text("18").Equal(Number(18)))
}
