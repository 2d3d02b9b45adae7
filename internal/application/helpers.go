package application

func calculateWinRate(wins, matches int) float64 {
	if matches == 0 {
		return 0.0
	}
	return (float64(wins) / float64(matches)) * 100
}

func calculateContestRate(picks, bans, matches int) float64 {
	if matches == 0 {
		return 0.0
	}
	return (float64(picks+bans) / float64(matches)) * 100
}

func compareTeamsByPriority(t1, t2 *TeamStats) bool {
	if t1.Matches != t2.Matches {
		return t1.Matches > t2.Matches
	}

	wr1 := calculateWinRate(t1.Wins, t1.Matches)
	wr2 := calculateWinRate(t2.Wins, t2.Matches)
	if wr1 != wr2 {
		return wr1 > wr2
	}

	return t1.Name < t2.Name
}

func compareHeroesByPriority(h1, h2 *HeroStats) bool {
	if h1.Picks+h1.Bans != h2.Picks+h2.Bans {
		return h1.Picks+h1.Bans > h2.Picks+h2.Bans
	}

	wr1 := calculateWinRate(h1.Wins, h1.Picks)
	wr2 := calculateWinRate(h2.Wins, h2.Picks)
	if wr1 != wr2 {
		return wr1 > wr2
	}

	return h1.HeroID < h2.HeroID
}
