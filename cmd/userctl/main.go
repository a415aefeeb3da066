package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openrescue/sarcoord/internal/model"
)

func read(fn string) []*model.User {
	dat, err := os.ReadFile(fn)
	if err != nil {
		return nil
	}

	users := make([]*model.User, 0)
	if err := yaml.Unmarshal(dat, &users); err != nil {
		panic(err.Error())
	}

	return users
}

func write(fn string, users []*model.User) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}

	defer f.Close()

	enc := yaml.NewEncoder(f)
	return enc.Encode(users)
}

func main() {
	file := flag.String("file", "users.yml", "users file")
	user := flag.String("user", "", "user login")
	passwd := flag.String("password", "", "password")
	disable := flag.Bool("disable", false, "disable the user")
	enable := flag.Bool("enable", false, "enable the user")
	flag.Parse()

	users := read(*file)

	if *user == "" {
		for _, u := range users {
			state := "active"
			if u.Disabled {
				state = "disabled"
			}

			fmt.Printf("%s\t%s\n", u.Login, state)
		}

		return
	}

	pass := *passwd
	if pass == "" && !*disable && !*enable {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("password: ")
		p1, _ := reader.ReadString('\n')
		fmt.Print("repeat password: ")
		p2, _ := reader.ReadString('\n')

		if p1 != p2 {
			fmt.Println("\npassword mismatch")
			return
		}

		pass = strings.TrimRight(p1, "\r\n")
	}

	var found *model.User

	for _, u := range users {
		if u.Login == *user {
			found = u
			break
		}
	}

	if found == nil {
		found = &model.User{Login: *user}
		users = append(users, found)
	}

	if pass != "" {
		if err := found.SetPassword(pass); err != nil {
			fmt.Println(err.Error())
			return
		}
	}

	if *disable {
		found.Disabled = true
	}

	if *enable {
		found.Disabled = false
	}

	if err := write(*file, users); err != nil {
		fmt.Println(err.Error())
	}
}
