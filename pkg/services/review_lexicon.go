package services

// sentimentLexicon AFINN形式の単語スコア（-5〜+5）。アプリレビューでよく出る語を中心に収録。
var sentimentLexicon = map[string]int{
	// positive
	"love": 3, "loved": 3, "loves": 3, "loving": 2, "lovely": 3,
	"like": 2, "liked": 2, "likes": 2,
	"good": 3, "great": 3, "greater": 3, "greatest": 3,
	"excellent": 3, "amazing": 4, "awesome": 4, "fantastic": 4, "outstanding": 5,
	"superb": 5, "wonderful": 4, "brilliant": 4, "perfect": 3, "perfectly": 3,
	"best": 3, "better": 2, "nice": 3, "cool": 1, "fun": 4, "funny": 4,
	"happy": 3, "happier": 3, "glad": 3, "pleased": 3, "satisfied": 2, "enjoy": 2,
	"enjoyed": 2, "enjoying": 2, "enjoyable": 2, "recommend": 2, "recommended": 2,
	"helpful": 2, "useful": 2, "easy": 1, "easier": 1, "simple": 1, "intuitive": 2,
	"smooth": 2, "fast": 1, "quick": 1, "reliable": 2, "stable": 2, "clean": 2,
	"beautiful": 3, "gorgeous": 3, "pretty": 1, "elegant": 2, "polished": 2,
	"thank": 2, "thanks": 2, "thankful": 2, "appreciate": 2, "appreciated": 2,
	"impressive": 3, "impressed": 3, "incredible": 4, "favorite": 2, "favourite": 2,
	"worth": 2, "worthy": 2, "valuable": 2, "convenient": 2, "efficient": 2,
	"win": 4, "wins": 4, "winner": 4, "works": 1, "solid": 2, "super": 3,
	"fine": 2, "ok": 1, "okay": 1, "improved": 2, "improvement": 2, "improve": 2,
	"exciting": 3, "excited": 3, "addictive": 2, "addicted": 2, "delight": 3,
	"delighted": 3, "delightful": 3, "cute": 2, "wow": 4, "yay": 2, "smart": 1,
	"genius": 3, "lifesaver": 3, "flawless": 3, "seamless": 2, "top": 2,
	"fabulous": 4, "terrific": 4, "stellar": 4, "positive": 2, "success": 2,
	"successful": 3, "useable": 1, "usable": 1, "affordable": 2, "free": 1,
	"recommendable": 2, "comfortable": 2, "friendly": 2, "responsive": 2,

	// negative
	"hate": -3, "hated": -3, "hates": -3, "hating": -3, "dislike": -2, "disliked": -2,
	"bad": -3, "worse": -3, "worst": -3, "terrible": -3, "horrible": -3, "awful": -3,
	"poor": -2, "poorly": -2, "crap": -3, "crappy": -3, "garbage": -1, "trash": -2,
	"junk": -2, "rubbish": -2, "sucks": -3, "suck": -3, "sucked": -3,
	"useless": -2, "pointless": -2, "worthless": -2, "waste": -1, "wasted": -2,
	"annoying": -2, "annoyed": -2, "annoy": -2, "annoys": -2, "frustrating": -2,
	"frustrated": -2, "frustration": -2, "angry": -3, "mad": -3, "upset": -2,
	"disappointed": -2, "disappointing": -2, "disappointment": -2, "sad": -2,
	"unhappy": -2, "broken": -1, "broke": -1, "crash": -2, "crashes": -2, "crashed": -2,
	"crashing": -2, "bug": -1, "bugs": -1, "buggy": -2, "glitch": -1, "glitches": -1,
	"glitchy": -2, "error": -2, "errors": -2, "fail": -2, "fails": -2, "failed": -2,
	"failure": -2, "fix": -1, "problem": -2, "problems": -2, "issue": -1, "issues": -1,
	"slow": -1, "slower": -1, "laggy": -2, "lag": -1, "lags": -1, "freeze": -1,
	"freezes": -1, "frozen": -1, "stuck": -2, "confusing": -2, "confused": -2,
	"complicated": -1, "difficult": -1, "hard": -1, "ugly": -3, "clunky": -2,
	"expensive": -2, "overpriced": -2, "scam": -2, "fraud": -4, "spam": -2,
	"ads": -1, "unusable": -2, "unreliable": -2, "unstable": -2, "unfortunately": -2,
	"ridiculous": -3, "stupid": -2, "dumb": -3, "pathetic": -2, "lame": -2,
	"refund": -1, "uninstall": -2, "uninstalled": -2, "deleted": -1, "delete": -1,
	"lost": -3, "lose": -3, "losing": -3, "missing": -2, "wrong": -2, "fake": -3,
	"never": -1, "nothing": -1, "disaster": -2, "nightmare": -3, "pain": -2,
	"painful": -2, "irritating": -3, "horrendous": -3, "abysmal": -3, "unacceptable": -2,
	"worried": -3, "worry": -3, "fear": -2, "scary": -2, "dead": -3, "died": -3,
	"negative": -2, "boring": -3, "bored": -2, "meh": -1, "mediocre": -1,
	"outdated": -1, "rip": -1, "ripoff": -3, "greedy": -2, "terribly": -3,
}

// sentimentNegators 直後の単語のスコアを反転させる語
var sentimentNegators = map[string]bool{
	"not": true, "no": true, "never": true, "nor": true, "neither": true, "hardly": true,
	"cannot": true, "cant": true, "can't": true, "dont": true, "don't": true,
	"doesnt": true, "doesn't": true, "didnt": true, "didn't": true, "isnt": true,
	"isn't": true, "wasnt": true, "wasn't": true, "arent": true, "aren't": true,
	"wont": true, "won't": true, "wouldnt": true, "wouldn't": true, "couldnt": true,
	"couldn't": true, "shouldnt": true, "shouldn't": true, "aint": true, "ain't": true,
}
