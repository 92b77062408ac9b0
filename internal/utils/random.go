package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/oracle312/AuthService/internal/auth"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var positions = []string{"Engineer", "Designer", "Analyst", "Manager"}
var departments = []string{"R&D", "Operations", "Finance", "Support"}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName takes a prefix of each syllable's pinyin
// and appends one to three digits.
func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, syllable := range pinyinArray {
		length := rand.Intn(len(syllable)) + 1
		username += syllable[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

// GenerateRandomAccount builds signup input for a fake account. An empty
// password gets a random one.
func GenerateRandomAccount(password string, emailDomainName string) auth.SignupInput {
	if password == "" {
		password = GenerateRandomPassword(12)
	}

	name := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(name)

	in := auth.SignupInput{
		Username: username,
		Password: password,
		Name:     name,
		Email:    username + "@" + emailDomainName,
	}

	// 大约一半的账户带有职位和部门
	if rand.Intn(2) == 0 {
		position := positions[rand.Intn(len(positions))]
		department := departments[rand.Intn(len(departments))]
		in.Position = &position
		in.Department = &department
	}

	return in
}
